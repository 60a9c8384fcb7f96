package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

// VersionMethod handles the version RPC method
// This method returns the build version and the supported API range.
type VersionMethod struct {
	BuildVersion string
}

func (m *VersionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	response := map[string]interface{}{
		"build_version": m.BuildVersion,
		"version": map[string]interface{}{
			"first": rpc_types.ApiVersion1,
			"last":  rpc_types.ApiVersion2,
			"good":  rpc_types.DefaultApiVersion,
		},
	}

	return response, nil
}

func (m *VersionMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *VersionMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
