package processor

import (
	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/ValentinKolb/tsched/lib/sink"
)

// IScheduleProcessor processes batches of schedule plans.
type IScheduleProcessor interface {
	// Process validates plans in order and writes verdicts and audit trails to out.
	// It does not close out.
	Process(plans []model.SchedulePlan, out sink.ISink) error
	// Report returns the statistics of all plans processed so far.
	Report() Report
}
