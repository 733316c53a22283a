package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mzahmi/attendance/ledger"
)

const (
	auditEventLedgerInitialized = "ledger_initialized"
	auditEventSessionRotated    = "session_rotated"
	auditEventAdminTransferred  = "admin_transferred"
	auditEventPresenceRecorded  = "presence_recorded"
	auditEventPresenceRejected  = "presence_rejected"
	auditEventProfileUpdated    = "profile_updated"
	auditEventProfileRejected   = "profile_rejected"
)

// AuditErrorCode is the stable error label carried in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrAlreadyInitialized AuditErrorCode = "already_initialized"
	auditErrNotInitialized     AuditErrorCode = "not_initialized"
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrNoActiveSession    AuditErrorCode = "no_active_session"
	auditErrInvalidHash        AuditErrorCode = "invalid_hash"
	auditErrInvalidNickname    AuditErrorCode = "invalid_nickname"
	auditErrInvalidAddress     AuditErrorCode = "invalid_address"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

// hashAuditPrefixLen bounds how much of the session hash appears in audit
// output. The hash is the shared attendance secret; eight hex characters are
// enough to correlate events without disclosing it.
const hashAuditPrefixLen = 8

func auditHashRef(hash Hash) string {
	return hash.String()[:hashAuditPrefixLen]
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	actor string,
	hashRef string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		Actor:       actor,
		SessionHash: hashRef,
		Success:     success,
		Metadata:    metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrAlreadyInitialized):
		return auditErrAlreadyInitialized
	case errors.Is(err, ErrNotInitialized):
		return auditErrNotInitialized
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrNoActiveSession):
		return auditErrNoActiveSession
	case errors.Is(err, ErrInvalidHash):
		return auditErrInvalidHash
	case errors.Is(err, ErrInvalidNickname):
		return auditErrInvalidNickname
	case errors.Is(err, ErrInvalidAddress):
		return auditErrInvalidAddress
	case errors.Is(err, ledger.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
