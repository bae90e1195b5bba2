package model

import "fmt"

// --------------------------------------------------------------------------
// Data Registry
// --------------------------------------------------------------------------

// DataRegistry holds the data items of one input, in insertion order.
type DataRegistry struct {
	order []string
	items map[string]*DataItem
}

// NewDataRegistry creates a registry for the given item ids.
// Duplicate ids are kept once, at the position of their first occurrence.
func NewDataRegistry(ids ...string) *DataRegistry {
	r := &DataRegistry{
		order: make([]string, 0, len(ids)),
		items: make(map[string]*DataItem, len(ids)),
	}
	for _, id := range ids {
		r.Add(NewDataItem(id))
	}
	return r
}

// Add inserts item into the registry. If an item with the same id exists it is replaced.
func (r *DataRegistry) Add(item *DataItem) {
	if _, ok := r.items[item.ID]; !ok {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = item
}

// Get returns the item with the given id or a RetCNotFound error.
func (r *DataRegistry) Get(id string) (*DataItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, NewError(RetCNotFound, fmt.Sprintf("data item %q not found", id))
	}
	return item, nil
}

// BumpRead sets TsRead of item id to max(TsRead, ts).
func (r *DataRegistry) BumpRead(id string, ts uint32) error {
	item, err := r.Get(id)
	if err != nil {
		return err
	}
	item.BumpRead(ts)
	return nil
}

// SetWrite sets TsWrite of item id to ts.
func (r *DataRegistry) SetWrite(id string, ts uint32) error {
	item, err := r.Get(id)
	if err != nil {
		return err
	}
	item.SetWrite(ts)
	return nil
}

// ResetAll sets the timestamps of every item back to 0.
func (r *DataRegistry) ResetAll() {
	for _, item := range r.items {
		item.Reset()
	}
}

// IDs returns the item ids in insertion order.
func (r *DataRegistry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Items returns copies of all items in insertion order.
func (r *DataRegistry) Items() []DataItem {
	items := make([]DataItem, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, *r.items[id])
	}
	return items
}

// Len returns the number of items.
func (r *DataRegistry) Len() int {
	return len(r.order)
}

// --------------------------------------------------------------------------
// Transaction Registry
// --------------------------------------------------------------------------

// TransactionRegistry holds the transactions of one input, in insertion order.
// Transactions are never mutated once registered.
type TransactionRegistry struct {
	order []string
	txs   map[string]Transaction
}

// NewTransactionRegistry creates a registry from the given transactions.
func NewTransactionRegistry(txs ...Transaction) *TransactionRegistry {
	r := &TransactionRegistry{
		order: make([]string, 0, len(txs)),
		txs:   make(map[string]Transaction, len(txs)),
	}
	for _, tx := range txs {
		r.Add(tx)
	}
	return r
}

// Add registers tx. An existing transaction with the same id is replaced.
func (r *TransactionRegistry) Add(tx Transaction) {
	if _, ok := r.txs[tx.ID]; !ok {
		r.order = append(r.order, tx.ID)
	}
	r.txs[tx.ID] = tx
}

// Get returns the transaction with the given id or a RetCNotFound error.
func (r *TransactionRegistry) Get(id string) (Transaction, error) {
	tx, ok := r.txs[id]
	if !ok {
		return Transaction{}, NewError(RetCNotFound, fmt.Sprintf("transaction %q not found", id))
	}
	return tx, nil
}

// Transactions returns all transactions in insertion order.
func (r *TransactionRegistry) Transactions() []Transaction {
	txs := make([]Transaction, 0, len(r.order))
	for _, id := range r.order {
		txs = append(txs, r.txs[id])
	}
	return txs
}

// Len returns the number of transactions.
func (r *TransactionRegistry) Len() int {
	return len(r.order)
}
