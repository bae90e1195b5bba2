package client

import (
	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/ValentinKolb/tsched/rpc/serializer"
	"github.com/ValentinKolb/tsched/rpc/transport"
)

// CheckResult is the result of a remote check
type CheckResult struct {
	// Verdicts holds one verdict line per plan, in input order
	Verdicts []string
	// Trails holds the audit trail of every data item, sorted by item id
	Trails []common.AuditTrail
	// Cached is true if the server answered from its result cache
	Cached bool
}

// IChecker validates input documents on a remote tsched server
type IChecker interface {
	// Check validates all plans of input. format is text or yaml (empty means text),
	// policy is noop or reset (empty means noop).
	// If the server fails after some plans were validated, the returned result
	// holds their verdicts and the error is a *RemoteError.
	Check(input []byte, format, policy string) (CheckResult, error)
	// Ping checks that the server is reachable
	Ping() error
	// Close closes the underlying transport
	Close() error
}

// NewRPCChecker creates a new RPC IChecker
// The function takes a config, a transport and a serializer as parameters
func NewRPCChecker(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (IChecker, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcChecker{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcChecker struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see client.IChecker)
// --------------------------------------------------------------------------

func (c *rpcChecker) Check(input []byte, format, policy string) (CheckResult, error) {
	req := common.NewCheckRequest(input, format, policy)
	resp, err := invokeRPCRequest(req, c.transport, c.serializer, common.MsgTCheck)
	if resp == nil {
		return CheckResult{}, err
	}

	Logger.Debugf("received %d verdicts and %d audit trails (cached: %t)", len(resp.Verdicts), len(resp.Trails), resp.Cached)
	return CheckResult{
		Verdicts: resp.Verdicts,
		Trails:   resp.Trails,
		Cached:   resp.Cached,
	}, err
}

func (c *rpcChecker) Ping() error {
	_, err := invokeRPCRequest(common.NewPingRequest(), c.transport, c.serializer, common.MsgTSuccess)
	return err
}

func (c *rpcChecker) Close() error {
	return c.transport.Close()
}
