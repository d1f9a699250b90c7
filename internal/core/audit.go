package core

import "time"

// Audit actions for key lifecycle events.
const (
	AuditKeyCreate = "key.create"
	AuditKeyUpdate = "key.update"
	AuditKeyDelete = "key.delete"
)

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "key.create")
	Action string `json:"action"`

	// Service is the identity whose key was affected
	Service ServiceIdentity `json:"service"`

	// Actor is the verified issuer of the request, empty for public routes
	Actor ServiceIdentity `json:"actor,omitempty"`

	// Fingerprint of the published public key, if any
	Fingerprint string `json:"fingerprint,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditReader is implemented by auditors that keep entries queryable.
type AuditReader interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
