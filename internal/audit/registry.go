package audit

import (
	"fmt"

	"github.com/The-Noona-Project/Noona-Vault/internal/config"
	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const (
	MemoryType = "memory"
	FileType   = "file"
)

// Build creates the auditor described by cfg. A disabled audit log yields a NoopAuditor.
func Build(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case MemoryType, "":
		return NewInMemoryAuditor(WithCapacity(cfg.Capacity)), nil
	case FileType:
		return NewFileAuditor(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", cfg.Type)
	}
}
