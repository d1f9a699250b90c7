package audit

import (
	"context"
	"time"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// NewEntry prepares an audit entry for a lifecycle action on service.
// The correlation ID and the verified caller are taken from ctx when present.
func NewEntry(ctx context.Context, action string, service core.ServiceIdentity) core.AuditEntry {
	entry := core.AuditEntry{
		ID:      core.CorrelationID(ctx),
		Time:    time.Now().UTC(),
		Action:  action,
		Service: service,
	}
	if claims, ok := core.ClaimsFromContext(ctx); ok {
		entry.Actor = claims.Issuer
	}
	return entry
}

// Complete records the outcome of the action on the entry.
func Complete(entry core.AuditEntry, err error) core.AuditEntry {
	entry.Success = err == nil
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}
