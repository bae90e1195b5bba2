package scheduler

import (
	"fmt"

	"github.com/ValentinKolb/tsched/lib/model"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IScheduler validates schedule plans against the registries it owns.
// The registries persist between plans and are only cleared by Reset.
type IScheduler interface {
	// SetSchedule sets the plan that the next CheckIfSerializable call evaluates.
	// It fails if the plan is malformed (no id, read or write without data item).
	SetSchedule(plan model.SchedulePlan) error
	// CheckIfSerializable evaluates the current plan.
	// A rollback is returned as a verdict, unknown ids are returned as an error.
	CheckIfSerializable() (verdict Verdict, err error)
	// Reset sets the timestamps of all data items to 0 and clears the current plan.
	// The audit log is not touched.
	Reset() error
	// AuditLog returns the audit records collected since the scheduler was created.
	// It is nil if auditing is disabled.
	AuditLog() *AuditLog
	// DataItems returns a snapshot of all data items in registration order.
	DataItems() []model.DataItem
}

// --------------------------------------------------------------------------
// Verdict
// --------------------------------------------------------------------------

// Outcome is the result of validating a schedule plan.
type Outcome uint8

const (
	OutcomeOK Outcome = iota
	OutcomeRollback
)

func (o Outcome) String() string {
	if o == OutcomeRollback {
		return "rollback"
	}
	return "ok"
}

// Verdict is the result of evaluating one schedule plan.
// Position is only meaningful for rollbacks and is the 0-based index of the
// operation that violated the protocol.
type Verdict struct {
	ScheduleID string
	Outcome    Outcome
	Position   int
}

// OK creates an OK verdict for the plan with the given id.
func OK(scheduleID string) Verdict {
	return Verdict{ScheduleID: scheduleID, Outcome: OutcomeOK}
}

// Rollback creates a rollback verdict at the given position.
func Rollback(scheduleID string, position int) Verdict {
	return Verdict{ScheduleID: scheduleID, Outcome: OutcomeRollback, Position: position}
}

// IsRollback reports whether the plan was rejected.
func (v Verdict) IsRollback() bool {
	return v.Outcome == OutcomeRollback
}

// String formats the verdict as "<id>-OK" or "<id>-ROLLBACK-<position>".
func (v Verdict) String() string {
	if v.IsRollback() {
		return fmt.Sprintf("%s-ROLLBACK-%d", v.ScheduleID, v.Position)
	}
	return v.ScheduleID + "-OK"
}
