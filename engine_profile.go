package attendance

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/mzahmi/attendance/ledger"
	"github.com/redis/go-redis/v9"
)

// Nickname length bounds, counted in Unicode code points.
const (
	nicknameMinRunes = 3
	nicknameMaxRunes = 32
)

// SetProfile creates or overwrites user's profile. The caller must supply an
// authorization proof for user — the admin cannot edit other users'
// profiles. Nicknames must be 3 to 32 Unicode code points; byte length does
// not matter. Overwriting restarts the profile's retention window.
func (e *Engine) SetProfile(ctx context.Context, user, nickname string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if user == "" {
		e.metricInc(MetricProfileRejected)
		return ErrInvalidAddress
	}

	if n := utf8.RuneCountInString(nickname); n < nicknameMinRunes || n > nicknameMaxRunes {
		e.metricInc(MetricProfileRejected)
		e.emitAudit(ctx, auditEventProfileRejected, false, user, "", ErrInvalidNickname, nil)
		return ErrInvalidNickname
	}

	if !e.authorizer.AuthorizedAs(ctx, user) {
		e.metricInc(MetricUnauthorized)
		e.metricInc(MetricProfileRejected)
		e.emitAudit(ctx, auditEventProfileRejected, false, user, "", ErrUnauthorized, nil)
		return ErrUnauthorized
	}

	profile := &ledger.Profile{
		Nickname:     nickname,
		RegisteredAt: time.Now().Unix(),
	}
	if err := e.store.SaveProfile(ctx, user, profile); err != nil {
		e.emitAudit(ctx, auditEventProfileRejected, false, user, "", err, nil)
		return err
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventProfileUpdated, true, user, "", nil, func() map[string]string {
		return map[string]string{
			"nickname": nickname,
		}
	})
	return nil
}

// GetProfile returns user's profile, or nil when none is stored. It requires
// no authorization. A hit refreshes the profile's retention window.
func (e *Engine) GetProfile(ctx context.Context, user string) (*Profile, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	profile, err := e.store.Profile(ctx, user)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}
