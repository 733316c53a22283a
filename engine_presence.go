package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Register marks the caller present for the active session. The caller must
// supply an authorization proof for user and the exact active session hash;
// comparison is constant-time. Registering twice for the same session is an
// idempotent success. A successful call also refreshes the active hash TTL,
// the presence TTL, and — when the user has a stored profile — the profile
// TTL.
func (e *Engine) Register(ctx context.Context, user string, sessionHash Hash) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if user == "" {
		e.metricInc(MetricRegisterRejected)
		return ErrInvalidAddress
	}

	if !e.authorizer.AuthorizedAs(ctx, user) {
		e.metricInc(MetricUnauthorized)
		e.metricInc(MetricRegisterRejected)
		e.emitAudit(ctx, auditEventPresenceRejected, false, user, "", ErrUnauthorized, nil)
		return ErrUnauthorized
	}

	active, err := e.store.ActiveHash(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			e.metricInc(MetricRegisterRejected)
			e.emitAudit(ctx, auditEventPresenceRejected, false, user, "", ErrNoActiveSession, nil)
			return ErrNoActiveSession
		}
		e.emitAudit(ctx, auditEventPresenceRejected, false, user, "", err, nil)
		return err
	}

	if !sessionHash.Equal(active) {
		e.metricInc(MetricRegisterRejected)
		e.emitAudit(ctx, auditEventPresenceRejected, false, user, "", ErrInvalidHash, nil)
		return ErrInvalidHash
	}

	if err := e.store.SetPresence(ctx, active, user); err != nil {
		e.emitAudit(ctx, auditEventPresenceRejected, false, user, auditHashRef(active), err, nil)
		return err
	}

	// Reading the profile through the store refreshes its TTL as a side
	// effect and gives the audit trail a nickname. Absence is fine; any
	// other failure must not undo a registration that already committed.
	nickname := ""
	if profile, perr := e.store.Profile(ctx, user); perr == nil && profile != nil {
		nickname = profile.Nickname
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventPresenceRecorded, true, user, auditHashRef(active), nil, func() map[string]string {
		if nickname == "" {
			return nil
		}
		return map[string]string{
			"nickname": nickname,
		}
	})
	return nil
}

// CheckPresence reports whether user is registered for the active session.
// It requires no authorization. When no session is open every user reads as
// absent. A positive answer refreshes the presence record's TTL.
func (e *Engine) CheckPresence(ctx context.Context, user string) (bool, error) {
	if e == nil || e.store == nil {
		return false, ErrEngineNotReady
	}

	active, err := e.store.ActiveHash(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			e.metricInc(MetricPresenceMiss)
			return false, nil
		}
		return false, err
	}

	present, err := e.store.HasPresence(ctx, active, user)
	if err != nil {
		return false, err
	}

	if present {
		e.metricInc(MetricPresenceHit)
	} else {
		e.metricInc(MetricPresenceMiss)
	}
	return present, nil
}

// CheckBatch answers CheckPresence for many users in one round trip. The
// result slice matches users in length and order. With no open session the
// answer is all-false with the same length as the input, never a short
// slice.
func (e *Engine) CheckBatch(ctx context.Context, users []string) ([]bool, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricBatchLatency, time.Since(start))
		}
	}()
	e.metricInc(MetricBatchChecked)

	if len(users) == 0 {
		return []bool{}, nil
	}

	active, err := e.store.ActiveHash(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return make([]bool, len(users)), nil
		}
		return nil, err
	}

	return e.store.HasPresenceBatch(ctx, active, users)
}
