package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Data Items
// --------------------------------------------------------------------------

// DataItem is a data item together with its timestamp-ordering state.
type DataItem struct {
	ID      string `json:"id"`
	TsRead  uint32 `json:"ts_read"`  // largest timestamp of a transaction that legally read the item
	TsWrite uint32 `json:"ts_write"` // timestamp of the transaction that last legally wrote the item
}

// NewDataItem creates a data item with both timestamps set to 0.
func NewDataItem(id string) *DataItem {
	return &DataItem{ID: id}
}

// IsReadable reports whether tx may read the item (tx.Ts >= TsWrite).
func (d *DataItem) IsReadable(tx Transaction) bool {
	return tx.Ts >= d.TsWrite
}

// IsWritable reports whether tx may write the item (tx.Ts >= TsRead and tx.Ts >= TsWrite).
func (d *DataItem) IsWritable(tx Transaction) bool {
	return tx.Ts >= d.TsRead && tx.Ts >= d.TsWrite
}

// BumpRead raises TsRead to ts. Smaller values are ignored so TsRead never decreases.
func (d *DataItem) BumpRead(ts uint32) {
	if d.TsRead < ts {
		d.TsRead = ts
	}
}

// SetWrite overwrites TsWrite with ts.
func (d *DataItem) SetWrite(ts uint32) {
	d.TsWrite = ts
}

// Reset sets both timestamps back to 0.
func (d *DataItem) Reset() {
	d.TsRead = 0
	d.TsWrite = 0
}

// String formats the item as <ID, TsRead, TsWrite>
func (d *DataItem) String() string {
	return fmt.Sprintf("<%s, %d, %d>", d.ID, d.TsRead, d.TsWrite)
}

// --------------------------------------------------------------------------
// Transactions
// --------------------------------------------------------------------------

// Transaction is a transaction with its fixed ordering timestamp.
type Transaction struct {
	ID string `json:"id"`
	Ts uint32 `json:"ts"`
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// OperationType is the kind of operation in a schedule plan.
type OperationType uint8

const (
	OpRead OperationType = iota
	OpWrite
	OpCommit
)

// String returns the lower case name of the operation type, as used in audit records.
func (t OperationType) String() string {
	switch t {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// ParseOperationType converts a type name (read, write, commit or the
// single letter forms r, w, c) into an OperationType.
func ParseOperationType(s string) (OperationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "read":
		return OpRead, nil
	case "w", "write":
		return OpWrite, nil
	case "c", "commit":
		return OpCommit, nil
	default:
		return 0, NewError(RetCInvalidOperation, fmt.Sprintf("invalid operation type %q", s))
	}
}

// MarshalJSON encodes the operation type by name.
func (t OperationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an operation type from its name.
func (t *OperationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOperationType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Operation is a single step of a schedule plan.
// DataID is empty for commits.
type Operation struct {
	Type          OperationType `json:"type"`
	TransactionID string        `json:"transaction_id"`
	DataID        string        `json:"data_id,omitempty"`
}

// Read creates a read operation of transaction txID on item dataID.
func Read(txID, dataID string) Operation {
	return Operation{Type: OpRead, TransactionID: txID, DataID: dataID}
}

// Write creates a write operation of transaction txID on item dataID.
func Write(txID, dataID string) Operation {
	return Operation{Type: OpWrite, TransactionID: txID, DataID: dataID}
}

// Commit creates a commit operation of transaction txID.
func Commit(txID string) Operation {
	return Operation{Type: OpCommit, TransactionID: txID}
}

// String formats the operation in the short notation used by the input format (e.g. r1(A), c2).
func (o Operation) String() string {
	txNum := strings.TrimPrefix(o.TransactionID, "T")
	switch o.Type {
	case OpRead:
		return fmt.Sprintf("r%s(%s)", txNum, o.DataID)
	case OpWrite:
		return fmt.Sprintf("w%s(%s)", txNum, o.DataID)
	default:
		return "c" + txNum
	}
}

// --------------------------------------------------------------------------
// Schedule Plans
// --------------------------------------------------------------------------

// SchedulePlan is one candidate interleaving of operations.
type SchedulePlan struct {
	ID         string      `json:"id"`
	Operations []Operation `json:"operations"`
}

// String formats the plan as "<ID>-<op> <op> ...".
func (p SchedulePlan) String() string {
	ops := make([]string, len(p.Operations))
	for i, op := range p.Operations {
		ops[i] = op.String()
	}
	return p.ID + "-" + strings.Join(ops, " ")
}
