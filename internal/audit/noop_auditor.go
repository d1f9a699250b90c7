package audit

import "github.com/The-Noona-Project/Noona-Vault/internal/core"

var _ core.Auditor = (*NoopAuditor)(nil)

// NoopAuditor discards every entry. Used when auditing is disabled.
type NoopAuditor struct{}

func NewNoopAuditor() *NoopAuditor {
	return &NoopAuditor{}
}

func (*NoopAuditor) Log(core.AuditEntry) error { return nil }

func (*NoopAuditor) Close() error { return nil }
