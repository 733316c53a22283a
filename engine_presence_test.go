package attendance

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegisterHappyPath(t *testing.T) {
	engine, hash := newInitializedEngine(t)
	ctx := context.Background()

	if err := engine.Register(WithSigner(ctx, "alice"), "alice", hash); err != nil {
		t.Fatalf("Register: %v", err)
	}

	present, err := engine.CheckPresence(ctx, "alice")
	if err != nil {
		t.Fatalf("CheckPresence: %v", err)
	}
	if !present {
		t.Fatal("expected alice to be present")
	}

	present, err = engine.CheckPresence(ctx, "bob")
	if err != nil {
		t.Fatalf("CheckPresence: %v", err)
	}
	if present {
		t.Fatal("expected bob to be absent")
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	engine, hash := newInitializedEngine(t)
	aliceCtx := WithSigner(context.Background(), "alice")

	if err := engine.Register(aliceCtx, "alice", hash); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := engine.Register(aliceCtx, "alice", hash); err != nil {
		t.Fatalf("repeat Register: %v", err)
	}
}

func TestRegisterRejectsWrongHash(t *testing.T) {
	engine, _ := newInitializedEngine(t)

	wrong, _ := NewSessionHash()
	err := engine.Register(WithSigner(context.Background(), "alice"), "alice", wrong)
	if !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}

	present, err := engine.CheckPresence(context.Background(), "alice")
	if err != nil {
		t.Fatalf("CheckPresence: %v", err)
	}
	if present {
		t.Fatal("rejected registration must leave no presence record")
	}
}

func TestRegisterRequiresOpenSession(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	if err := engine.Initialize(ctx, "admin-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	hash, _ := NewSessionHash()
	err := engine.Register(WithSigner(ctx, "alice"), "alice", hash)
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestRegisterRequiresUserProof(t *testing.T) {
	engine, hash := newInitializedEngine(t)
	ctx := context.Background()

	// No proof.
	if err := engine.Register(ctx, "alice", hash); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without proof, got %v", err)
	}
	// Proof for someone else: bob cannot register alice even knowing the hash.
	if err := engine.Register(WithSigner(ctx, "bob"), "alice", hash); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for third party, got %v", err)
	}
	// The admin cannot register on a user's behalf either.
	if err := engine.Register(WithSigner(ctx, "admin-1"), "alice", hash); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for admin acting as user, got %v", err)
	}
}

func TestRotationInvalidatesPriorPresence(t *testing.T) {
	engine, first := newInitializedEngine(t)
	ctx := context.Background()

	if err := engine.Register(WithSigner(ctx, "alice"), "alice", first); err != nil {
		t.Fatalf("Register: %v", err)
	}

	second, _ := NewSessionHash()
	if err := engine.SetHash(WithSigner(ctx, "admin-1"), second); err != nil {
		t.Fatalf("SetHash: %v", err)
	}

	present, err := engine.CheckPresence(ctx, "alice")
	if err != nil {
		t.Fatalf("CheckPresence: %v", err)
	}
	if present {
		t.Fatal("presence must reset when the session rotates")
	}

	// The old hash no longer registers anyone.
	if err := engine.Register(WithSigner(ctx, "bob"), "bob", first); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected stale hash to be rejected, got %v", err)
	}
}

func TestCheckPresenceWithoutSession(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())

	present, err := engine.CheckPresence(context.Background(), "alice")
	if err != nil {
		t.Fatalf("CheckPresence: %v", err)
	}
	if present {
		t.Fatal("expected absent with no open session")
	}
}

func TestCheckBatchMixedResults(t *testing.T) {
	engine, hash := newInitializedEngine(t)
	ctx := context.Background()

	for _, user := range []string{"alice", "carol"} {
		if err := engine.Register(WithSigner(ctx, user), user, hash); err != nil {
			t.Fatalf("Register %s: %v", user, err)
		}
	}

	users := []string{"alice", "bob", "carol", "alice", "unknown"}
	results, err := engine.CheckBatch(ctx, users)
	if err != nil {
		t.Fatalf("CheckBatch: %v", err)
	}

	want := []bool{true, false, true, true, false}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("result[%d]: expected %v, got %v", i, want[i], results[i])
		}
	}
}

func TestCheckBatchEmptyInput(t *testing.T) {
	engine, _ := newInitializedEngine(t)

	results, err := engine.CheckBatch(context.Background(), []string{})
	if err != nil {
		t.Fatalf("CheckBatch: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(results))
	}
}

func TestCheckBatchWithoutSessionIsAllFalse(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())

	users := []string{"alice", "bob", "carol"}
	results, err := engine.CheckBatch(context.Background(), users)
	if err != nil {
		t.Fatalf("CheckBatch: %v", err)
	}
	if len(results) != len(users) {
		t.Fatalf("expected result length %d, got %d", len(users), len(results))
	}
	for i, present := range results {
		if present {
			t.Fatalf("result[%d]: expected false with no session", i)
		}
	}
}

func TestRegisterRefreshesSessionTTL(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Ledger.SessionTTL = time.Minute
	cfg.Ledger.PresenceTTL = time.Minute
	engine, mr := newTestEngine(t, cfg)
	ctx := context.Background()

	if err := engine.Initialize(ctx, "admin-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	hash, _ := NewSessionHash()
	if err := engine.SetHash(WithSigner(ctx, "admin-1"), hash); err != nil {
		t.Fatalf("SetHash: %v", err)
	}

	// Each registration inside the window pushes the session deadline out.
	mr.FastForward(40 * time.Second)
	if err := engine.Register(WithSigner(ctx, "alice"), "alice", hash); err != nil {
		t.Fatalf("Register: %v", err)
	}
	mr.FastForward(40 * time.Second)
	if err := engine.Register(WithSigner(ctx, "bob"), "bob", hash); err != nil {
		t.Fatalf("Register after refresh: %v", err)
	}

	if _, ok, err := engine.GetSession(ctx); err != nil || !ok {
		t.Fatalf("expected session alive past original TTL: ok=%v err=%v", ok, err)
	}
}

func TestRegisterCountsMetrics(t *testing.T) {
	engine, hash := newInitializedEngine(t)
	ctx := context.Background()

	if err := engine.Register(WithSigner(ctx, "alice"), "alice", hash); err != nil {
		t.Fatalf("Register: %v", err)
	}
	wrong, _ := NewSessionHash()
	_ = engine.Register(WithSigner(ctx, "bob"), "bob", wrong)

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricRegisterSuccess] != 1 {
		t.Fatalf("expected 1 register success, got %d", snap.Counters[MetricRegisterSuccess])
	}
	if snap.Counters[MetricRegisterRejected] != 1 {
		t.Fatalf("expected 1 register rejection, got %d", snap.Counters[MetricRegisterRejected])
	}
}
