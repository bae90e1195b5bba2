package processor

import (
	"time"

	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/ValentinKolb/tsched/lib/scheduler"
	"github.com/ValentinKolb/tsched/lib/sink"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("processor")

type processorImpl struct {
	scheduler scheduler.IScheduler
	stats     *stats
}

// NewScheduleProcessor creates a processor that validates plans with s.
func NewScheduleProcessor(s scheduler.IScheduler) IScheduleProcessor {
	return &processorImpl{
		scheduler: s,
		stats:     newStats(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see processor.IScheduleProcessor)
// --------------------------------------------------------------------------

func (p *processorImpl) Process(plans []model.SchedulePlan, out sink.ISink) error {
	Logger.Infof("processing %d schedule plans", len(plans))

	for i, plan := range plans {
		Logger.Debugf("processing plan %s (%d/%d)", plan.ID, i+1, len(plans))

		if err := p.scheduler.SetSchedule(plan); err != nil {
			Logger.Errorf("failed to set schedule for plan %s: %v", plan.ID, err)
			return errors.Wrapf(err, "failed to set schedule for plan %s", plan.ID)
		}

		start := time.Now()
		verdict, err := p.scheduler.CheckIfSerializable()
		if err != nil {
			Logger.Errorf("failed to check serializability for plan %s: %v", plan.ID, err)
			return errors.Wrapf(err, "failed to check serializability for plan %s", plan.ID)
		}
		p.stats.observe(verdict, time.Since(start))

		if err := out.WriteVerdict(verdict.String()); err != nil {
			return errors.Wrapf(err, "failed to write verdict for plan %s", plan.ID)
		}

		if err := p.scheduler.Reset(); err != nil {
			Logger.Errorf("failed to reset scheduler after processing plan %s: %v", plan.ID, err)
			return errors.Wrapf(err, "failed to reset scheduler after processing plan %s", plan.ID)
		}
	}

	// an empty batch leaves no audit trails behind
	if len(plans) == 0 {
		Logger.Infof("no schedule plans to process")
		return nil
	}

	if err := p.flushAudit(out); err != nil {
		return err
	}

	Logger.Infof("processed %d schedule plans", len(plans))
	return nil
}

func (p *processorImpl) Report() Report {
	return p.stats.report()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// flushAudit writes the trail of every data item to out
func (p *processorImpl) flushAudit(out sink.ISink) error {
	log := p.scheduler.AuditLog()
	if log == nil {
		return nil
	}

	var err error
	log.Scan(func(itemID string, records []scheduler.AuditRecord) bool {
		lines := make([]string, len(records))
		for i, r := range records {
			lines[i] = r.String()
		}
		if err = out.WriteAudit(itemID, lines); err != nil {
			err = errors.Wrapf(err, "failed to write audit trail of data item %s", itemID)
			return false
		}
		p.stats.auditRecords.Inc(int64(len(records)))
		return true
	})
	return err
}
