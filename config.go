package attendance

import (
	"errors"
	"time"

	"github.com/mzahmi/attendance/ledger"
)

// Config defines the immutable engine configuration. Set it once through
// [Builder.WithConfig]; the builder clones it defensively.
type Config struct {
	Ledger  LedgerConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
LEDGER CONFIG
====================================
*/

// LedgerConfig controls the Redis key namespace and per-entity lifetimes.
type LedgerConfig struct {
	RedisPrefix string

	AdminTTL    time.Duration
	SessionTTL  time.Duration
	PresenceTTL time.Duration
	ProfileTTL  time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults: 30-day TTLs for admin,
// session, and presence records, 90 days for profiles, audit and metrics
// enabled with a drop-if-full audit buffer.
func DefaultConfig() Config {
	ttl := ledger.DefaultTTLPolicy()

	return Config{
		Ledger: LedgerConfig{
			RedisPrefix: "att",
			AdminTTL:    ttl.Admin,
			SessionTTL:  ttl.Session,
			PresenceTTL: ttl.Presence,
			ProfileTTL:  ttl.Profile,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if err := c.ttlPolicy().Validate(); err != nil {
		return err
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}

func (c Config) ttlPolicy() ledger.TTLPolicy {
	return ledger.TTLPolicy{
		Admin:    c.Ledger.AdminTTL,
		Session:  c.Ledger.SessionTTL,
		Presence: c.Ledger.PresenceTTL,
		Profile:  c.Ledger.ProfileTTL,
	}
}

func cloneConfig(cfg Config) Config {
	// Config holds no reference types; a value copy is a deep copy.
	return cfg
}
