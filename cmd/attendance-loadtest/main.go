// Command attendance-loadtest seeds an attendance ledger and measures the
// presence-query hot paths. Configuration comes from the environment; with
// no REDIS_ADDR set it runs against an embedded miniredis.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	attendance "github.com/mzahmi/attendance"
)

type config struct {
	RedisAddr   string `env:"REDIS_ADDR"`
	Prefix      string `env:"LEDGER_PREFIX" envDefault:"att"`
	Users       int    `env:"LOADTEST_USERS" envDefault:"50000"`
	Concurrency int    `env:"LOADTEST_CONCURRENCY" envDefault:"256"`
	Ops         int    `env:"LOADTEST_OPS" envDefault:"200000"`
	BatchSize   int    `env:"LOADTEST_BATCH" envDefault:"64"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.Users <= 0 || cfg.Concurrency <= 0 || cfg.Ops <= 0 || cfg.BatchSize <= 0 {
		fmt.Fprintln(os.Stderr, "LOADTEST_USERS, LOADTEST_CONCURRENCY, LOADTEST_OPS, and LOADTEST_BATCH must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if cfg.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.RedisAddr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", cfg.RedisAddr)
	}
	defer cleanup()

	engineCfg := attendance.DefaultConfig()
	engineCfg.Ledger.RedisPrefix = cfg.Prefix
	engineCfg.Audit.Enabled = false

	engine, err := attendance.New().
		WithConfig(engineCfg).
		WithRedis(client).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	users := seed(ctx, engine, cfg.Users)

	singleStats := runPresencePhase(ctx, engine, users, cfg.Ops, cfg.Concurrency)
	batchStats := runBatchPhase(ctx, engine, users, cfg.Ops, cfg.Concurrency, cfg.BatchSize)

	fmt.Println("---- results ----")
	printStats("check_presence", singleStats)
	printStats("check_batch", batchStats)
}

func seed(ctx context.Context, engine *attendance.Engine, count int) []string {
	adminCtx := attendance.WithSigner(ctx, "admin-1")

	if err := engine.Initialize(ctx, "admin-1"); err != nil {
		fmt.Fprintf(os.Stderr, "initialize failed: %v\n", err)
		os.Exit(1)
	}
	hash, err := attendance.NewSessionHash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash generation failed: %v\n", err)
		os.Exit(1)
	}
	if err := engine.SetHash(adminCtx, hash); err != nil {
		fmt.Fprintf(os.Stderr, "session open failed: %v\n", err)
		os.Exit(1)
	}

	users := make([]string, count)
	fmt.Printf("registering %d users...\n", count)
	startSeed := time.Now()
	for i := 0; i < count; i++ {
		user := fmt.Sprintf("user-%d", i)
		users[i] = user
		if err := engine.Register(attendance.WithSigner(ctx, user), user, hash); err != nil {
			fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("registered in %s\n", time.Since(startSeed).Round(time.Millisecond))

	return users
}

func runPresencePhase(ctx context.Context, engine *attendance.Engine, users []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(users))
				t0 := time.Now()
				present, err := engine.CheckPresence(ctx, users[idx])
				d := time.Since(t0)
				if err != nil || !present {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runBatchPhase(ctx context.Context, engine *attendance.Engine, users []string, ops, concurrency, batchSize int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			batch := make([]string, batchSize)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				for j := range batch {
					batch[j] = users[r.Intn(len(users))]
				}
				t0 := time.Now()
				results, err := engine.CheckBatch(ctx, batch)
				d := time.Since(t0)
				if err != nil || len(results) != len(batch) {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
