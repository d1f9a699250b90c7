package audit

import (
	"sync"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

// DefaultMemoryCapacity is the number of entries kept by an InMemoryAuditor
// unless configured otherwise.
const DefaultMemoryCapacity = 1000

var (
	_ core.Auditor     = (*InMemoryAuditor)(nil)
	_ core.AuditReader = (*InMemoryAuditor)(nil)
)

// InMemoryAuditor keeps the most recent audit entries in a fixed size ring.
// Once full, every new entry evicts the oldest one.
type InMemoryAuditor struct {
	mu    sync.RWMutex
	ring  []core.AuditEntry
	next  int // slot the next entry is written to
	count int
}

type MemoryOption func(*InMemoryAuditor)

// WithCapacity sets the number of retained entries. Values below 1 keep the default.
func WithCapacity(n int) MemoryOption {
	return func(i *InMemoryAuditor) {
		if n > 0 {
			i.ring = make([]core.AuditEntry, n)
		}
	}
}

func NewInMemoryAuditor(opts ...MemoryOption) *InMemoryAuditor {
	i := &InMemoryAuditor{ring: make([]core.AuditEntry, DefaultMemoryCapacity)}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *InMemoryAuditor) Log(entry core.AuditEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.ring[i.next] = entry
	i.next = (i.next + 1) % len(i.ring)
	if i.count < len(i.ring) {
		i.count++
	}
	return nil
}

// ordered returns the retained entries, oldest first. Callers hold the lock.
func (i *InMemoryAuditor) ordered() []core.AuditEntry {
	out := make([]core.AuditEntry, 0, i.count)
	start := (i.next - i.count + len(i.ring)) % len(i.ring)
	for n := 0; n < i.count; n++ {
		out = append(out, i.ring[(start+n)%len(i.ring)])
	}
	return out
}

// GetRecent returns up to limit of the newest entries, oldest first.
// A negative limit returns everything retained.
func (i *InMemoryAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	return i.Find(func(core.AuditEntry) bool { return true }, limit)
}

func (i *InMemoryAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	i.mu.RLock()
	all := i.ordered()
	i.mu.RUnlock()

	matches := all[:0]
	for _, entry := range all {
		if filter(entry) {
			matches = append(matches, entry)
		}
	}
	if limit >= 0 && len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}
	return matches, nil
}

// Len reports the number of retained entries.
func (i *InMemoryAuditor) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.count
}

func (i *InMemoryAuditor) Close() error {
	return nil
}
