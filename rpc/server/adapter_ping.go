package server

import (
	"fmt"

	"github.com/ValentinKolb/tsched/rpc/common"
)

func NewPingServerAdapter() IRPCServerAdapter {
	return &pingServerAdapter{}
}

type pingServerAdapter struct{}

func (adapter *pingServerAdapter) Handle(req *common.Message) (resp *common.Message) {
	if req.MsgType != common.MsgTPing {
		return common.NewErrorResponse(fmt.Sprintf("RPC PingAdapter - Unsuported message type: %s", req.MsgType))
	}
	return common.NewPingResponse()
}
