package server

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/tsched/lib/parser"
	"github.com/ValentinKolb/tsched/lib/processor"
	"github.com/ValentinKolb/tsched/lib/scheduler"
	"github.com/ValentinKolb/tsched/lib/sink"
	"github.com/ValentinKolb/tsched/lib/util"
	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// checkResult is a cached response of a successful check.
// The request it answers is kept since the cache key is only a hash.
type checkResult struct {
	format   parser.Format
	policy   scheduler.CommitPolicy
	input    string
	verdicts []string
	trails   []common.AuditTrail
}

// answers reports whether r is the result of the given request
func (r checkResult) answers(format parser.Format, policy scheduler.CommitPolicy, input []byte) bool {
	return r.format == format && r.policy == policy && r.input == string(input)
}

// NewCheckServerAdapter creates the adapter for check requests.
// Results of successful checks are cached, up to cacheSize entries (0 disables the cache).
func NewCheckServerAdapter(cacheSize int) IRPCServerAdapter {
	return newCheckServerAdapter(cacheSize, newServerMetrics())
}

func newCheckServerAdapter(cacheSize int, m *serverMetrics) *checkServerAdapter {
	return &checkServerAdapter{
		cache:     xsync.NewMapOf[uint64, checkResult](),
		cacheSize: cacheSize,
		metrics:   m,
	}
}

type checkServerAdapter struct {
	cache     *xsync.MapOf[uint64, checkResult]
	cacheSize int
	metrics   *serverMetrics
}

func (adapter *checkServerAdapter) Handle(req *common.Message) (resp *common.Message) {
	if req.MsgType != common.MsgTCheck {
		return common.NewErrorResponse(fmt.Sprintf("RPC CheckAdapter - Unsuported message type: %s", req.MsgType))
	}

	start := time.Now()
	adapter.metrics.checks.Inc()
	defer adapter.metrics.duration.UpdateDuration(start)

	result, cached, err := adapter.check(req)
	if err != nil {
		adapter.metrics.checkErrors.Inc()
		Logger.Warningf("check failed: %v", err)
		return common.NewCheckResponse(result.verdicts, nil, false, err)
	}
	if cached {
		adapter.metrics.cacheHits.Inc()
	}
	return common.NewCheckResponse(result.verdicts, result.trails, cached, nil)
}

// check runs (or looks up) the check of one input document.
// On failure the verdicts written before the failure are returned with the error.
func (adapter *checkServerAdapter) check(req *common.Message) (checkResult, bool, error) {
	format, err := parser.ParseFormat(req.Format)
	if err != nil {
		return checkResult{}, false, err
	}
	if format == parser.FormatAuto {
		format = parser.FormatText
	}
	policy, err := scheduler.ParseCommitPolicy(req.Policy)
	if err != nil {
		return checkResult{}, false, err
	}

	key := util.HashStrings(0, string(format), policy.String(), string(req.Input))
	cached, hit := adapter.cache.Load(key)
	if hit && cached.answers(format, policy, req.Input) {
		Logger.Debugf("serving check %x from cache", key)
		return cached, true, nil
	}
	if hit {
		Logger.Warningf("cache key %x collides with another input, checking again", key)
	}

	in, err := parser.Parse(req.Input, format)
	if err != nil {
		return checkResult{}, false, err
	}

	// every request gets its own registries
	items, txs := in.Registries()
	p := processor.NewScheduleProcessor(scheduler.NewScheduler(items, txs, &scheduler.Options{
		CommitPolicy: policy,
		Audit:        true,
	}))
	out := sink.NewMemorySink()
	defer out.Close()

	if err := p.Process(in.Plans, out); err != nil {
		return checkResult{verdicts: out.Verdicts()}, false, err
	}

	report := p.Report()
	adapter.metrics.plansOK.Add(int(report.OK))
	adapter.metrics.plansRB.Add(int(report.Rollbacks))

	result := checkResult{format: format, policy: policy, input: string(req.Input), verdicts: out.Verdicts()}
	for _, id := range out.ItemIDs() {
		records, _ := out.Audit(id)
		result.trails = append(result.trails, common.AuditTrail{ItemID: id, Records: records})
	}

	// a colliding entry is replaced by the latest result
	if adapter.cacheSize > 0 && (hit || adapter.cache.Size() < adapter.cacheSize) {
		adapter.cache.Store(key, result)
	}
	Logger.Debugf("checked %d plans (%d ok, %d rollbacks)", report.Plans, report.OK, report.Rollbacks)
	return result, false, nil
}
