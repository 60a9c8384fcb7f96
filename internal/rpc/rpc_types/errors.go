package rpc_types

import (
	"github.com/LeJamon/goPriceFeed/internal/core/errors"
)

// RPC Error Codes - matching rippled where one exists

// RpcError represents an RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type"`
	Message     string `json:"error_message,omitempty"`

	// Module and ModuleCode identify the core error a runtime error was
	// flattened from.
	Module     string `json:"error_module,omitempty"`
	ModuleCode uint32 `json:"error_module_code,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Err returns the core error e was flattened from when it is known, and
// e itself otherwise.
func (e *RpcError) Err() error {
	if e.Module == "" || e.ModuleCode == errors.CodeNoError {
		return e
	}
	return errors.FromCode(e.Module, e.ModuleCode, e.Message)
}

const (
	// Universal errors
	RpcUNKNOWN          = -1
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	// General purpose errors
	RpcGENERAL           = 1
	RpcMISSING_COMMAND   = 2
	RpcCOMMAND_UNTRUSTED = 3
	RpcTOO_BUSY          = 6

	RpcNOT_SUPPORTED = 32

	RpcINVALID_API_VERSION = 38

	RpcOBJECT_NOT_FOUND = 92
)

// Standard error constructors
func NewRpcError(code int, error, errorType, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: error,
		Type:        errorType,
		Message:     message,
	}
}

// Common error constructors matching rippled
func RpcErrorUnknown(message string) *RpcError {
	return NewRpcError(RpcUNKNOWN, "unknown", "unknown", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", "internal", message)
}

func RpcErrorInvalidApiVersion(version string) *RpcError {
	return NewRpcError(RpcINVALID_API_VERSION, "invalidApiVersion", "invalidApiVersion", "Invalid API version: "+version)
}

func RpcErrorCommandUntrusted(method string) *RpcError {
	return NewRpcError(RpcCOMMAND_UNTRUSTED, "commandUntrusted", "commandUntrusted",
		"Method '"+method+"' requires higher privileges")
}

// RpcErrorMissingField returns an error for missing required field (matches rippled missing_field_error)
func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Missing field '"+field+"'.")
}

// RpcErrorInvalidField returns an error for invalid field value (matches rippled invalid_field_error)
func RpcErrorInvalidField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Invalid field '"+field+"'.")
}

// RpcErrorRuntime flattens a failure of the price feed into a single
// human-readable error. The module and code of a registered error are
// kept so clients can match it.
func RpcErrorRuntime(err error) *RpcError {
	e := NewRpcError(RpcGENERAL, "runtimeError", "runtimeError", err.Error())
	if module, code := errors.Code(err); module != errors.UnknownModule {
		e.Module = module
		e.ModuleCode = code
	}
	return e
}

func RpcErrorObjectNotFound(message string) *RpcError {
	return NewRpcError(RpcOBJECT_NOT_FOUND, "objectNotFound", "objectNotFound", message)
}
