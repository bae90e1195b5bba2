package scheduler

import (
	"testing"

	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/ValentinKolb/tsched/lib/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// fixture returns the registries used by most tests:
// items A, B, C, D and transactions T1..T4 with timestamps 8, 9, 1, 4
func fixture() (*model.DataRegistry, *model.TransactionRegistry) {
	items := model.NewDataRegistry("A", "B", "C", "D")
	txs := model.NewTransactionRegistry(
		model.Transaction{ID: "T1", Ts: 8},
		model.Transaction{ID: "T2", Ts: 9},
		model.Transaction{ID: "T3", Ts: 1},
		model.Transaction{ID: "T4", Ts: 4},
	)
	return items, txs
}

func mustPlan(t testing.TB, line string) model.SchedulePlan {
	t.Helper()
	plan, err := parser.ParseSchedulePlan(line, 1)
	require.NoError(t, err)
	return plan
}

func check(t testing.TB, s IScheduler, line string) (Verdict, error) {
	t.Helper()
	require.NoError(t, s.SetSchedule(mustPlan(t, line)))
	return s.CheckIfSerializable()
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

var referenceSchedules = []struct {
	line    string
	noop    string
	onReset string
}{
	{"E_1-r1(A) r4(A) r3(A) r3(B) r2(A) c", "E_1-OK", "E_1-OK"},
	{"E_2-r1(A) c w4(A) r2(A) r3(C) c", "E_2-ROLLBACK-2", "E_2-OK"},
	{"E_3-w4(B) r1(B) r2(B) c r4(A) r3(A) r3(D) w3(D) r2(D) r2(B) c", "E_3-OK", "E_3-OK"},
	{"E_4-w4(B) r1(B) r2(B) c r4(A) r3(A) r3(D) w3(D) r4(D) w4(D) r2(C) w1(D) w3(D) c r3(C) r3(B) r2(A) c", "E_4-ROLLBACK-12", "E_4-ROLLBACK-12"},
	{"E_5-w4(B) r1(B) r2(B) c r4(A) r3(A) r3(D) w3(D) r4(D) w4(D) r2(C) w1(D) c w3(D) r3(C) r3(B) r2(A) c", "E_5-ROLLBACK-13", "E_5-OK"},
	{"E_6-r1(A) r2(A) w2(B) w3(C) c w3(B) w4(A) w4(B) c", "E_6-ROLLBACK-5", "E_6-OK"},
	{"E_7-w1(A) r2(B) r1(B) w2(B) r1(A) c w3(B) w4(A) w2(B) c", "E_7-ROLLBACK-6", "E_7-OK"},
	{"E_8-w1(A) r2(B) r1(B) w2(B) r1(A) w3(B) w4(A) w2(B) c", "E_8-ROLLBACK-5", "E_8-ROLLBACK-5"},
	{"E_9-w1(A) r2(B) r1(B) r1(A) w3(B) w4(A) w2(B) c", "E_9-ROLLBACK-4", "E_9-ROLLBACK-4"},
}

func TestReferenceSchedules(t *testing.T) {
	for _, policy := range []CommitPolicy{CommitNoop, CommitResetsTimestamps} {
		t.Run(policy.String(), func(t *testing.T) {
			for _, tc := range referenceSchedules {
				items, txs := fixture()
				s := NewScheduler(items, txs, &Options{CommitPolicy: policy})

				verdict, err := check(t, s, tc.line)
				require.NoError(t, err, tc.line)

				want := tc.noop
				if policy == CommitResetsTimestamps {
					want = tc.onReset
				}
				assert.Equal(t, want, verdict.String(), tc.line)
			}
		})
	}
}

func TestEmptyPlanIsOK(t *testing.T) {
	items, txs := fixture()

	// even with timestamps that would block everything
	_ = items.SetWrite("A", 100)
	verdict, err := Evaluate(model.SchedulePlan{ID: "S0"}, items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S0-OK", verdict.String())
	assert.False(t, verdict.IsRollback())
}

func TestRollbackPositionIsZeroBased(t *testing.T) {
	items, txs := fixture()
	require.NoError(t, items.SetWrite("A", 9))

	verdict, err := Evaluate(mustPlan(t, "S1-r1(A) r2(A)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.True(t, verdict.IsRollback())
	assert.Equal(t, 0, verdict.Position)
	assert.Equal(t, "S1-ROLLBACK-0", verdict.String())

	// commits count as positions
	items, txs = fixture()
	verdict, err = Evaluate(mustPlan(t, "S2-w2(A) c2 r3(A)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S2-ROLLBACK-2", verdict.String())
}

func TestReadRollsBackOnNewerWrite(t *testing.T) {
	items, txs := fixture()

	// T2 (9) writes A, T1 (8) must not read it
	verdict, err := Evaluate(mustPlan(t, "S-w2(A) r1(A) w4(B)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S-ROLLBACK-1", verdict.String())

	// nothing after the failing operation was applied
	b, _ := items.Get("B")
	assert.Zero(t, b.TsWrite)
	a, _ := items.Get("A")
	assert.Zero(t, a.TsRead)
}

func TestWriteRollsBackOnNewerReadOrWrite(t *testing.T) {
	items, txs := fixture()
	verdict, err := Evaluate(mustPlan(t, "S-r2(A) w1(A)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S-ROLLBACK-1", verdict.String(), "newer read")

	items, txs = fixture()
	verdict, err = Evaluate(mustPlan(t, "S-w2(A) w1(A)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S-ROLLBACK-1", verdict.String(), "newer write")

	items, txs = fixture()
	verdict, err = Evaluate(mustPlan(t, "S-w1(A) w1(A) r1(A) w2(A)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S-OK", verdict.String(), "equal timestamps are legal")
}

func TestCommitLeavesTimestampsUnchanged(t *testing.T) {
	items, txs := fixture()
	s := NewScheduler(items, txs, nil)

	verdict, err := check(t, s, "S1 - r1(A) w2(B)")
	require.NoError(t, err)
	require.Equal(t, "S1-OK", verdict.String())
	before := s.DataItems()

	require.NoError(t, s.Reset())
	verdict, err = check(t, s, "S1 - r1(A) w2(B) c1")
	require.NoError(t, err)
	assert.Equal(t, "S1-OK", verdict.String())
	assert.Equal(t, before, s.DataItems())
}

func TestCommitResetPolicyClearsTimestamps(t *testing.T) {
	items, txs := fixture()
	s := NewScheduler(items, txs, &Options{CommitPolicy: CommitResetsTimestamps})

	_, err := check(t, s, "S1-r1(A) w2(B) c1")
	require.NoError(t, err)
	for _, item := range s.DataItems() {
		assert.Zero(t, item.TsRead, item.ID)
		assert.Zero(t, item.TsWrite, item.ID)
	}
}

func TestUnknownIDsAreErrors(t *testing.T) {
	for _, line := range []string{"S-r1(A) r7(A)", "S-w1(A) w1(Z)"} {
		items, txs := fixture()
		_, err := Evaluate(mustPlan(t, line), items, txs, CommitNoop, nil)
		require.Error(t, err, line)
		assert.True(t, model.IsNotFound(err), line)
	}

	// commits never look anything up
	items, txs := fixture()
	verdict, err := Evaluate(mustPlan(t, "S-c7 c"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S-OK", verdict.String())

	// a rollback stops the scan before an unknown id is reached
	items, txs = fixture()
	verdict, err = Evaluate(mustPlan(t, "S-w2(A) r3(A) r7(Z)"), items, txs, CommitNoop, nil)
	require.NoError(t, err)
	assert.Equal(t, "S-ROLLBACK-1", verdict.String())
}

func TestReadTimestampIsMonotonic(t *testing.T) {
	items, txs := fixture()
	a, _ := items.Get("A")

	var last uint32
	for _, line := range []string{"S-r3(A)", "S-r4(A)", "S-r1(A)", "S-r3(A)", "S-r2(A)", "S-r4(A)"} {
		verdict, err := Evaluate(mustPlan(t, line), items, txs, CommitNoop, nil)
		require.NoError(t, err)
		require.False(t, verdict.IsRollback())
		assert.GreaterOrEqual(t, a.TsRead, last)
		last = a.TsRead
	}
	assert.Equal(t, uint32(9), a.TsRead)
}

func TestResetClearsPartialEffects(t *testing.T) {
	items, txs := fixture()
	s := NewScheduler(items, txs, nil)

	verdict, err := check(t, s, "S1-w2(A) r1(B) w3(A)")
	require.NoError(t, err)
	require.True(t, verdict.IsRollback())

	require.NoError(t, s.Reset())
	for _, item := range s.DataItems() {
		assert.Zero(t, item.TsRead, item.ID)
		assert.Zero(t, item.TsWrite, item.ID)
	}

	// after the reset the plan that previously would have failed passes
	verdict, err = check(t, s, "S2-w3(A)")
	require.NoError(t, err)
	assert.Equal(t, "S2-OK", verdict.String())
}

func TestSetScheduleValidation(t *testing.T) {
	items, txs := fixture()
	s := NewScheduler(items, txs, nil)

	_, err := s.CheckIfSerializable()
	assert.Error(t, err, "check without schedule")

	err = s.SetSchedule(model.SchedulePlan{Operations: []model.Operation{model.Commit("T1")}})
	assert.Error(t, err, "missing id")

	err = s.SetSchedule(model.SchedulePlan{ID: "S", Operations: []model.Operation{{Type: model.OpRead, TransactionID: "T1"}}})
	assert.Error(t, err, "read without item")

	require.NoError(t, s.SetSchedule(model.SchedulePlan{ID: "S"}))
	require.NoError(t, s.Reset())
	_, err = s.CheckIfSerializable()
	assert.Error(t, err, "reset clears the schedule")
}

func TestAuditLog(t *testing.T) {
	items, txs := fixture()
	s := NewScheduler(items, txs, nil)

	_, err := check(t, s, "S1 - r1(A) w2(B) c1")
	require.NoError(t, err)
	require.NoError(t, s.Reset())
	_, err = check(t, s, "S2-w1(A) r2(A) w3(A)")
	require.NoError(t, err)

	log := s.AuditLog()
	require.NotNil(t, log)
	assert.Equal(t, []string{"A", "B", "C", "D"}, log.ItemIDs())
	assert.Equal(t, []string{"S1,read,0", "S2,write,0", "S2,read,1"}, log.Lines("A"))
	assert.Equal(t, []string{"S1,write,1"}, log.Lines("B"))
	assert.Empty(t, log.Lines("C"))
	assert.Equal(t, 4, log.Len())
}

func TestAuditDisabled(t *testing.T) {
	items, txs := fixture()
	s := NewScheduler(items, txs, &Options{})

	_, err := check(t, s, "S1-r1(A)")
	require.NoError(t, err)
	assert.Nil(t, s.AuditLog())
}

func TestParseCommitPolicy(t *testing.T) {
	p, err := ParseCommitPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CommitNoop, p)

	p, err = ParseCommitPolicy("Reset")
	require.NoError(t, err)
	assert.Equal(t, CommitResetsTimestamps, p)

	_, err = ParseCommitPolicy("clear")
	assert.Error(t, err)
}
