package client

import (
	"fmt"

	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/ValentinKolb/tsched/rpc/serializer"
	"github.com/ValentinKolb/tsched/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// RemoteError is an error reported by the server. Its message is the server side error message.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return e.Msg
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It returns the response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type.
// For error responses the (partial) response is returned together with a *RemoteError.
func invokeRPCRequest(req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer, expected common.MessageType) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, fmt.Errorf("RPC Client - failed to serialize request: %w", err)
	}

	// Send the request
	respBytes, err := transport.Send(reqBytes)
	if err != nil {
		return nil, fmt.Errorf("RPC Client - %s request failed: %w", req.MsgType, err)
	}

	// Deserialize the response
	resp := &common.Message{}
	if err := serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC Client - failed to deserialize response: %w", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return resp, &RemoteError{Msg: resp.Err}
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != expected {
		return nil, fmt.Errorf("RPC Client - unexpected message type: %s, expected %s", resp.MsgType, expected)
	}

	return resp, nil
}
