package sink

import (
	"fmt"

	"github.com/tidwall/btree"
)

// MemorySink keeps verdicts and audit trails in memory.
type MemorySink struct {
	verdicts []string
	audit    btree.Map[string, []string]
	closed   bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) WriteVerdict(line string) error {
	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	s.verdicts = append(s.verdicts, line)
	return nil
}

func (s *MemorySink) WriteAudit(itemID string, records []string) error {
	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	trail := make([]string, len(records))
	copy(trail, records)
	s.audit.Set(itemID, trail)
	return nil
}

func (s *MemorySink) Close() error {
	s.closed = true
	return nil
}

// Verdicts returns the verdict lines in the order they were written.
func (s *MemorySink) Verdicts() []string {
	return s.verdicts
}

// Audit returns the audit trail of itemID and whether one was written.
func (s *MemorySink) Audit(itemID string) ([]string, bool) {
	return s.audit.Get(itemID)
}

// ItemIDs returns the ids of all items with a written audit trail, sorted.
func (s *MemorySink) ItemIDs() []string {
	return s.audit.Keys()
}

// AuditTrails returns all written audit trails keyed by item id.
func (s *MemorySink) AuditTrails() map[string][]string {
	trails := make(map[string][]string, s.audit.Len())
	s.audit.Scan(func(id string, records []string) bool {
		trails[id] = records
		return true
	})
	return trails
}

// Closed reports whether Close was called.
func (s *MemorySink) Closed() bool {
	return s.closed
}
