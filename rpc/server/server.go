package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/ValentinKolb/tsched/rpc/serializer"
	"github.com/ValentinKolb/tsched/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	m := newServerMetrics()

	// Register one adapter per message type
	adapters := xsync.NewMapOf[common.MessageType, IRPCServerAdapter]()
	adapters.Store(common.MsgTCheck, newCheckServerAdapter(config.CacheSize, m))
	adapters.Store(common.MsgTPing, NewPingServerAdapter())

	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		adapters:   adapters,
		metrics:    m,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	adapters   *xsync.MapOf[common.MessageType, IRPCServerAdapter]
	metrics    *serverMetrics
}

// HandleRequest decodes a serialized request, lets the matching adapter handle
// it and returns the serialized response. Failures are reported as error responses.
func (s *rpcServer) HandleRequest(req []byte) []byte {
	var msg common.Message
	var respMsg common.Message

	if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = *common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else if adapter, ok := s.adapters.Load(msg.MsgType); !ok {
		respMsg = *common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", msg.MsgType))
	} else {
		respMsg = *adapter.Handle(&msg)
	}

	val, err := s.serializer.Serialize(respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// Serve starts the RPC server
// This function initializes the loggers and blocks until the transport is closed
func (s *rpcServer) Serve() error {
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", s.config.String())

	s.transport.RegisterHandler(s.HandleRequest)
	s.transport.RegisterMetrics(s.metrics.write)
	return s.transport.Listen(s.config)
}

// Close stops the transport
func (s *rpcServer) Close() error {
	return s.transport.Close()
}
