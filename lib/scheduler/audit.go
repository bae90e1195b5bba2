package scheduler

import (
	"fmt"

	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/tidwall/btree"
)

// AuditRecord documents one applied read or write on a data item.
type AuditRecord struct {
	ScheduleID string
	Type       model.OperationType
	Position   int
}

// String formats the record as "<ScheduleId>,<opType>,<position>".
func (r AuditRecord) String() string {
	return fmt.Sprintf("%s,%s,%d", r.ScheduleID, r.Type, r.Position)
}

// AuditLog collects audit records per data item. Items are kept sorted by id
// so that a flush always produces the same order.
type AuditLog struct {
	items btree.Map[string, []AuditRecord]
}

// NewAuditLog creates a log with an (empty) entry for each of the given item ids.
func NewAuditLog(itemIDs ...string) *AuditLog {
	l := &AuditLog{}
	for _, id := range itemIDs {
		if _, ok := l.items.Get(id); !ok {
			l.items.Set(id, nil)
		}
	}
	return l
}

// Append adds a record to the trail of item itemID.
func (l *AuditLog) Append(itemID string, record AuditRecord) {
	records, _ := l.items.Get(itemID)
	l.items.Set(itemID, append(records, record))
}

// Records returns the records of item itemID in the order they were appended.
func (l *AuditLog) Records(itemID string) []AuditRecord {
	records, _ := l.items.Get(itemID)
	return records
}

// Lines returns the records of item itemID formatted with AuditRecord.String.
func (l *AuditLog) Lines(itemID string) []string {
	records := l.Records(itemID)
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return lines
}

// ItemIDs returns all item ids known to the log, sorted.
func (l *AuditLog) ItemIDs() []string {
	return l.items.Keys()
}

// Scan calls fn for every item in id order until fn returns false.
func (l *AuditLog) Scan(fn func(itemID string, records []AuditRecord) bool) {
	l.items.Scan(fn)
}

// Len returns the total number of records over all items.
func (l *AuditLog) Len() int {
	n := 0
	l.items.Scan(func(_ string, records []AuditRecord) bool {
		n += len(records)
		return true
	})
	return n
}
