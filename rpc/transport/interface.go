package transport

import (
	"io"
	"net"

	"github.com/ValentinKolb/tsched/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes a serialized request and returns the serialized response
type ServerHandleFunc func(req []byte) (resp []byte)

// MetricsWriteFunc writes all server metrics in Prometheus text format to w
type MetricsWriteFunc func(w io.Writer)

// IRPCServerTransport is the interface for the RPC transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// RegisterMetrics registers the function used to expose metrics.
	// Transports without a metrics endpoint ignore it.
	RegisterMetrics(metrics MetricsWriteFunc)
	// Listen opens config.Endpoint and serves requests until Close is called
	Listen(config common.ServerConfig) error
	// Serve serves requests on an already opened listener until Close is called
	Serve(listener net.Listener, config common.ServerConfig) error
	// Close stops the transport
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
