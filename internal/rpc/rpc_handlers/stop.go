package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

// StopMethod handles the stop RPC method
type StopMethod struct {
	// Stop starts a graceful shutdown. It must not block.
	Stop func()
}

func (m *StopMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if m.Stop == nil {
		return nil, rpc_types.RpcErrorInternal("Shutdown not available")
	}
	m.Stop()

	response := map[string]interface{}{
		"message": "pricefeedd server stopping",
	}

	return response, nil
}

func (m *StopMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin
}

func (m *StopMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
