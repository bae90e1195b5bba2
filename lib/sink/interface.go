package sink

// ISink receives the output of a batch run.
type ISink interface {
	// WriteVerdict appends one verdict line to the verdict destination.
	WriteVerdict(line string) error
	// WriteAudit writes the complete audit trail of data item itemID.
	// An empty trail still creates the destination.
	WriteAudit(itemID string, records []string) error
	// Close flushes pending output and releases all resources.
	Close() error
}
