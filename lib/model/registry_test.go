package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataItemGuards(t *testing.T) {
	item := &DataItem{ID: "X", TsRead: 1000, TsWrite: 2000}

	assert.True(t, item.IsReadable(Transaction{ID: "T1", Ts: 2000}))
	assert.False(t, item.IsReadable(Transaction{ID: "T1", Ts: 1500}))
	assert.True(t, item.IsWritable(Transaction{ID: "T1", Ts: 2000}))
	assert.False(t, item.IsWritable(Transaction{ID: "T1", Ts: 1500}))

	// write is blocked by a later read even when no write happened
	reader := &DataItem{ID: "Y", TsRead: 10}
	assert.False(t, reader.IsWritable(Transaction{ID: "T2", Ts: 9}))
	assert.True(t, reader.IsReadable(Transaction{ID: "T2", Ts: 9}))
}

func TestDataItemBumpReadNeverDecreases(t *testing.T) {
	item := NewDataItem("A")

	for _, ts := range []uint32{3, 7, 5, 7, 1, 9} {
		before := item.TsRead
		item.BumpRead(ts)
		assert.GreaterOrEqual(t, item.TsRead, before)
	}
	assert.Equal(t, uint32(9), item.TsRead)
}

func TestDataItemSetWriteOverwrites(t *testing.T) {
	item := NewDataItem("A")
	item.SetWrite(8)
	item.SetWrite(4)
	assert.Equal(t, uint32(4), item.TsWrite)
	assert.Equal(t, "<A, 0, 4>", item.String())
}

func TestDataRegistryLookup(t *testing.T) {
	r := NewDataRegistry("A", "B", "A", "C")

	assert.Equal(t, []string{"A", "B", "C"}, r.IDs())
	assert.Equal(t, 3, r.Len())

	item, err := r.Get("B")
	require.NoError(t, err)
	assert.Equal(t, "B", item.ID)

	_, err = r.Get("Z")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), `data item "Z" not found`)
}

func TestDataRegistryMutations(t *testing.T) {
	r := NewDataRegistry("A", "B")

	require.NoError(t, r.BumpRead("A", 5))
	require.NoError(t, r.BumpRead("A", 2))
	require.NoError(t, r.SetWrite("B", 7))

	a, _ := r.Get("A")
	b, _ := r.Get("B")
	assert.Equal(t, uint32(5), a.TsRead)
	assert.Equal(t, uint32(0), a.TsWrite)
	assert.Equal(t, uint32(7), b.TsWrite)

	assert.True(t, IsNotFound(r.BumpRead("Q", 1)))
	assert.True(t, IsNotFound(r.SetWrite("Q", 1)))

	r.ResetAll()
	for _, item := range r.Items() {
		assert.Zero(t, item.TsRead, item.ID)
		assert.Zero(t, item.TsWrite, item.ID)
	}
}

func TestTransactionRegistry(t *testing.T) {
	r := NewTransactionRegistry(
		Transaction{ID: "T1", Ts: 8},
		Transaction{ID: "T2", Ts: 9},
	)

	tx, err := r.Get("T2")
	require.NoError(t, err)
	assert.Equal(t, uint32(9), tx.Ts)

	_, err = r.Get("T9")
	assert.True(t, IsNotFound(err))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "T1", r.Transactions()[0].ID)
}

func TestParseOperationType(t *testing.T) {
	cases := map[string]OperationType{
		"r": OpRead, "R": OpRead, "read": OpRead,
		"w": OpWrite, "write": OpWrite,
		"c": OpCommit, "commit": OpCommit,
	}
	for in, want := range cases {
		got, err := ParseOperationType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOperationType("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid operation type")
}

func TestPlanString(t *testing.T) {
	plan := SchedulePlan{
		ID:         "S1",
		Operations: []Operation{Read("T1", "A"), Write("T2", "B"), Commit("T1")},
	}
	assert.Equal(t, "S1-r1(A) w2(B) c1", plan.String())
}
