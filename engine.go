package attendance

import (
	"context"
	"errors"

	"github.com/mzahmi/attendance/ledger"
	"github.com/redis/go-redis/v9"
)

// Engine is the authorization-gated attendance ledger. Construct one through
// [Builder.Build]; all methods are safe for concurrent use afterwards.
//
// Every mutating method validates fully before its first write, so an error
// return implies the ledger is unchanged.
type Engine struct {
	config     Config
	store      *ledger.Store
	authorizer Authorizer
	audit      *auditDispatcher
	metrics    *Metrics
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Initialize establishes the authorization root by storing the admin
// address. It succeeds exactly once: any later call fails with
// [ErrAlreadyInitialized] regardless of the address supplied. No
// authorization proof is required — first caller wins.
func (e *Engine) Initialize(ctx context.Context, admin string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if admin == "" {
		return ErrInvalidAddress
	}

	ok, err := e.store.SetAdminNX(ctx, admin)
	if err != nil {
		e.emitAudit(ctx, auditEventLedgerInitialized, false, admin, "", err, nil)
		return err
	}
	if !ok {
		e.metricInc(MetricInitializeRejected)
		e.emitAudit(ctx, auditEventLedgerInitialized, false, admin, "", ErrAlreadyInitialized, nil)
		return ErrAlreadyInitialized
	}

	e.metricInc(MetricInitialized)
	e.emitAudit(ctx, auditEventLedgerInitialized, true, admin, "", nil, nil)
	return nil
}

// SetHash opens a new attendance session by overwriting the active session
// hash. Admin only. Rotation is unconditional: presence records keyed by the
// previous hash remain in storage until their TTL but become unreachable
// through CheckPresence immediately.
func (e *Engine) SetHash(ctx context.Context, newHash Hash) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	admin, err := e.requireAdmin(ctx)
	if err != nil {
		e.emitAudit(ctx, auditEventSessionRotated, false, admin, "", err, nil)
		return err
	}

	if err := e.store.SetActiveHash(ctx, newHash); err != nil {
		e.emitAudit(ctx, auditEventSessionRotated, false, admin, auditHashRef(newHash), err, nil)
		return err
	}

	e.metricInc(MetricHashRotated)
	e.emitAudit(ctx, auditEventSessionRotated, true, admin, auditHashRef(newHash), nil, nil)
	return nil
}

// TransferAdmin atomically replaces the admin address. The old admin loses
// authority the moment the call commits; there is no grace period and no
// acceptance step by the new admin.
func (e *Engine) TransferAdmin(ctx context.Context, newAdmin string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if newAdmin == "" {
		return ErrInvalidAddress
	}

	oldAdmin, err := e.requireAdmin(ctx)
	if err != nil {
		e.emitAudit(ctx, auditEventAdminTransferred, false, oldAdmin, "", err, nil)
		return err
	}

	if err := e.store.SetAdmin(ctx, newAdmin); err != nil {
		e.emitAudit(ctx, auditEventAdminTransferred, false, oldAdmin, "", err, nil)
		return err
	}

	e.metricInc(MetricAdminTransferred)
	e.emitAudit(ctx, auditEventAdminTransferred, true, oldAdmin, "", nil, func() map[string]string {
		return map[string]string{
			"new_admin": newAdmin,
		}
	})
	return nil
}

// GetAdmin returns the current admin address. The second return is false
// when the ledger has not been initialized (or the record expired) — that is
// a normal answer, not an error.
func (e *Engine) GetAdmin(ctx context.Context) (string, bool, error) {
	if e == nil || e.store == nil {
		return "", false, ErrEngineNotReady
	}

	admin, err := e.store.Admin(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return admin, true, nil
}

// GetSession returns the active session hash. The second return is false
// when no session is open.
func (e *Engine) GetSession(ctx context.Context) (Hash, bool, error) {
	var zero Hash
	if e == nil || e.store == nil {
		return zero, false, ErrEngineNotReady
	}

	hash, err := e.store.ActiveHash(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return hash, true, nil
}

// requireAdmin reads the stored admin once and checks the caller's proof
// against it. All admin-gated decisions for a call derive from this single
// read; nothing re-reads the admin mid-operation.
func (e *Engine) requireAdmin(ctx context.Context) (string, error) {
	admin, err := e.store.Admin(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotInitialized
		}
		return "", err
	}

	if !e.authorizer.AuthorizedAs(ctx, admin) {
		e.metricInc(MetricUnauthorized)
		return admin, ErrUnauthorized
	}
	return admin, nil
}
