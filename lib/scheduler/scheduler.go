package scheduler

import (
	"fmt"

	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("scheduler")

// --------------------------------------------------------------------------
// Protocol
// --------------------------------------------------------------------------

// Evaluate runs plan against the given registries and returns its verdict.
//
// The registries are mutated in place: every legal read and write updates the
// timestamps of its item, and they are not restored after a rollback. Records
// of applied reads and writes are appended to audit if it is non-nil.
// An unknown transaction or data item aborts the evaluation with a
// model.RetCNotFound error.
func Evaluate(
	plan model.SchedulePlan,
	items *model.DataRegistry,
	txs *model.TransactionRegistry,
	policy CommitPolicy,
	audit *AuditLog,
) (Verdict, error) {
	Logger.Debugf("checking schedule %s with %d operations", plan.ID, len(plan.Operations))

	for pos, op := range plan.Operations {
		if op.Type == model.OpCommit {
			if policy == CommitResetsTimestamps {
				items.ResetAll()
			}
			continue
		}

		tx, err := txs.Get(op.TransactionID)
		if err != nil {
			Logger.Errorf("%s operation at %d of schedule %s: %v", op.Type, pos, plan.ID, err)
			return Verdict{}, err
		}
		item, err := items.Get(op.DataID)
		if err != nil {
			Logger.Errorf("%s operation at %d of schedule %s: %v", op.Type, pos, plan.ID, err)
			return Verdict{}, err
		}

		switch op.Type {
		case model.OpRead:
			if !item.IsReadable(tx) {
				Logger.Infof("schedule %s is not serializable: %s (ts %d) cannot read %s, rolling back at %d", plan.ID, tx.ID, tx.Ts, item, pos)
				return Rollback(plan.ID, pos), nil
			}
			item.BumpRead(tx.Ts)
		case model.OpWrite:
			if !item.IsWritable(tx) {
				Logger.Infof("schedule %s is not serializable: %s (ts %d) cannot write %s, rolling back at %d", plan.ID, tx.ID, tx.Ts, item, pos)
				return Rollback(plan.ID, pos), nil
			}
			item.SetWrite(tx.Ts)
		default:
			return Verdict{}, model.NewError(model.RetCInvalidOperation, fmt.Sprintf("unknown operation type %d at %d", op.Type, pos))
		}

		if audit != nil {
			audit.Append(item.ID, AuditRecord{ScheduleID: plan.ID, Type: op.Type, Position: pos})
		}
	}

	Logger.Infof("schedule %s is serializable", plan.ID)
	return OK(plan.ID), nil
}

// --------------------------------------------------------------------------
// Stateful Scheduler
// --------------------------------------------------------------------------

type schedulerImpl struct {
	items *model.DataRegistry
	txs   *model.TransactionRegistry
	opts  Options
	audit *AuditLog
	plan  *model.SchedulePlan
}

// NewScheduler creates a scheduler that owns the given registries.
// If opts is nil, DefaultOptions is used.
func NewScheduler(items *model.DataRegistry, txs *model.TransactionRegistry, opts *Options) IScheduler {
	if opts == nil {
		opts = DefaultOptions()
	}
	if items == nil {
		items = model.NewDataRegistry()
	}
	if txs == nil {
		txs = model.NewTransactionRegistry()
	}

	s := &schedulerImpl{
		items: items,
		txs:   txs,
		opts:  *opts,
	}
	if opts.Audit {
		s.audit = NewAuditLog(items.IDs()...)
	}

	Logger.Debugf("created scheduler with %d data items, %d transactions, commit policy %s",
		items.Len(), txs.Len(), opts.CommitPolicy)
	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see scheduler.IScheduler)
// --------------------------------------------------------------------------

func (s *schedulerImpl) SetSchedule(plan model.SchedulePlan) error {
	if plan.ID == "" {
		return model.NewError(model.RetCInvalidOperation, "schedule plan has no id")
	}
	for pos, op := range plan.Operations {
		if op.Type != model.OpCommit && op.DataID == "" {
			return model.NewError(model.RetCInvalidOperation,
				fmt.Sprintf("%s operation at %d of schedule %s has no data item", op.Type, pos, plan.ID))
		}
	}

	Logger.Debugf("schedule %s set with %d operations", plan.ID, len(plan.Operations))
	s.plan = &plan
	return nil
}

func (s *schedulerImpl) CheckIfSerializable() (Verdict, error) {
	if s.plan == nil {
		return Verdict{}, model.NewError(model.RetCInvalidOperation, "no schedule set")
	}
	return Evaluate(*s.plan, s.items, s.txs, s.opts.CommitPolicy, s.audit)
}

func (s *schedulerImpl) Reset() error {
	s.items.ResetAll()
	s.plan = nil
	Logger.Debugf("timestamps of %d data items reset", s.items.Len())
	return nil
}

func (s *schedulerImpl) AuditLog() *AuditLog {
	return s.audit
}

func (s *schedulerImpl) DataItems() []model.DataItem {
	return s.items.Items()
}
