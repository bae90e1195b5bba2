package processor

import (
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/tsched/lib/scheduler"
	"github.com/rcrowley/go-metrics"
)

const (
	metricPlans            = "plans"
	metricOK               = "verdicts.ok"
	metricRollback         = "verdicts.rollback"
	metricRollbackPosition = "rollback.position"
	metricEvaluation       = "evaluation"
	metricAuditRecords     = "audit.records"
)

// stats bundles the metrics of one processor
type stats struct {
	registry         metrics.Registry
	plans            metrics.Counter
	ok               metrics.Counter
	rollback         metrics.Counter
	rollbackPosition metrics.Histogram
	evaluation       metrics.Timer
	auditRecords     metrics.Counter
}

func newStats() *stats {
	r := metrics.NewRegistry()
	return &stats{
		registry:         r,
		plans:            metrics.GetOrRegisterCounter(metricPlans, r),
		ok:               metrics.GetOrRegisterCounter(metricOK, r),
		rollback:         metrics.GetOrRegisterCounter(metricRollback, r),
		rollbackPosition: metrics.GetOrRegisterHistogram(metricRollbackPosition, r, metrics.NewUniformSample(1028)),
		evaluation:       metrics.GetOrRegisterTimer(metricEvaluation, r),
		auditRecords:     metrics.GetOrRegisterCounter(metricAuditRecords, r),
	}
}

func (s *stats) observe(v scheduler.Verdict, took time.Duration) {
	s.plans.Inc(1)
	s.evaluation.Update(took)
	if v.IsRollback() {
		s.rollback.Inc(1)
		s.rollbackPosition.Update(int64(v.Position))
	} else {
		s.ok.Inc(1)
	}
}

// Report is a snapshot of the statistics of a processor.
type Report struct {
	Plans        int64 `json:"plans"`
	OK           int64 `json:"ok"`
	Rollbacks    int64 `json:"rollbacks"`
	AuditRecords int64 `json:"audit_records"`

	MeanRollbackPosition float64 `json:"mean_rollback_position"`
	MaxRollbackPosition  int64   `json:"max_rollback_position"`

	MeanEvaluation  time.Duration `json:"mean_evaluation"`
	MaxEvaluation   time.Duration `json:"max_evaluation"`
	TotalEvaluation time.Duration `json:"total_evaluation"`
}

func (s *stats) report() Report {
	positions := s.rollbackPosition.Snapshot()
	timer := s.evaluation.Snapshot()
	return Report{
		Plans:                s.plans.Count(),
		OK:                   s.ok.Count(),
		Rollbacks:            s.rollback.Count(),
		AuditRecords:         s.auditRecords.Count(),
		MeanRollbackPosition: positions.Mean(),
		MaxRollbackPosition:  positions.Max(),
		MeanEvaluation:       time.Duration(timer.Mean()),
		MaxEvaluation:        time.Duration(timer.Max()),
		TotalEvaluation:      time.Duration(timer.Sum()),
	}
}

// String returns a human readable summary
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("Batch Statistics:\n")
	sb.WriteString(fmt.Sprintf("  Plans:              %d\n", r.Plans))
	sb.WriteString(fmt.Sprintf("  OK:                 %d\n", r.OK))
	sb.WriteString(fmt.Sprintf("  Rollbacks:          %d\n", r.Rollbacks))
	if r.Rollbacks > 0 {
		sb.WriteString(fmt.Sprintf("  Rollback position:  mean %.2f, max %d\n", r.MeanRollbackPosition, r.MaxRollbackPosition))
	}
	sb.WriteString(fmt.Sprintf("  Audit records:      %d\n", r.AuditRecords))
	sb.WriteString(fmt.Sprintf("  Evaluation time:    total %s, mean %s, max %s\n", r.TotalEvaluation, r.MeanEvaluation, r.MaxEvaluation))
	return sb.String()
}
