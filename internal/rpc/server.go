package rpc

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/logging"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"go.uber.org/zap"
)

// BuildVersion is reported by the version method. It is set at link time.
var BuildVersion = "0.1.0-dev"

// maxRequestBody bounds the size of a JSON-RPC request body.
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests using XRPL format
type Server struct {
	registry *rpc_types.MethodRegistry
	services *rpc_types.ServiceContainer
	cfg      config.ServerConfig
	logger   *zap.Logger

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewServer creates a new RPC server answering from services.
func NewServer(cfg config.ServerConfig, services *rpc_types.ServiceContainer, logger *zap.Logger) *Server {
	initMetrics()

	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		services: services,
		cfg:      cfg,
		logger:   logging.OrNop(logger).Named("rpc"),
		stopped:  make(chan struct{}),
	}

	// Register all RPC methods
	server.registerAllMethods()

	return server
}

// Methods lists the registered method names.
func (s *Server) Methods() []string {
	return s.registry.List()
}

// Stopped is closed once an admin client called the stop method.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopped
}

func (s *Server) requestStop() {
	s.stopOnce.Do(func() {
		s.logger.Info("stop requested over rpc")
		close(s.stopped)
	})
}

// XrplRequest represents an XRPL JSON-RPC request
// Format: {"method": "method_name", "params": [{...}]}
type XrplRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers to match rippled
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest processes GET requests with query parameters
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	method := query.Get("command")

	if method == "" {
		method = "ping"
	}

	ctx := s.newContext(r)

	// Simple string params are taken from the query, e.g.
	// ?command=price_feed_price&from=DOCK&to=USD
	var params json.RawMessage
	fields := make(map[string]string)
	for key, values := range query {
		if key != "command" && len(values) > 0 {
			fields[key] = values[0]
		}
	}
	if len(fields) > 0 {
		params, _ = json.Marshal(fields)
	}

	result, rpcErr := s.executeMethod(method, params, ctx)

	s.writeXrplResponse(w, method, nil, result, rpcErr)
}

// handlePostRequest processes POST requests with XRPL JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeXrplError(w, nil, "internal", "Failed to read request body")
		return
	}

	var request XrplRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeXrplError(w, nil, "jsonInvalid", "Invalid JSON: "+err.Error())
		return
	}

	if request.Method == "" {
		s.writeXrplError(w, nil, "missingCommand", "Missing method field")
		return
	}

	// Extract params - XRPL uses params as an array with one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := s.newContext(r)

	// Parse API version from params if present
	if params != nil {
		var versioned struct {
			ApiVersion *int `json:"api_version"`
		}
		if err := json.Unmarshal(params, &versioned); err == nil && versioned.ApiVersion != nil {
			ctx.ApiVersion = *versioned.ApiVersion
		}
	}

	result, rpcErr := s.executeMethod(request.Method, params, ctx)

	// Build request object for error responses
	var requestObj interface{}
	if params != nil {
		var reqMap map[string]interface{}
		if err := json.Unmarshal(params, &reqMap); err == nil {
			reqMap["command"] = request.Method
			requestObj = reqMap
		}
	} else {
		requestObj = map[string]interface{}{"command": request.Method}
	}

	s.writeXrplResponse(w, request.Method, requestObj, result, rpcErr)
}

// newContext creates the RPC context of r. The admin role is granted by
// the address of the peer, never by forwarding headers.
func (s *Server) newContext(r *http.Request) *rpc_types.RpcContext {
	ctx := &rpc_types.RpcContext{
		Context:    r.Context(),
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   getClientIP(r),
	}
	if s.cfg.IsAdmin(remoteIP(r.RemoteAddr)) {
		ctx.Role = rpc_types.RoleAdmin
		ctx.IsAdmin = true
	}
	return ctx
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	// Check role permissions
	if ctx.Role < handler.RequiredRole() {
		s.logger.Warn("untrusted method call",
			zap.String("method", method),
			zap.String("client_ip", ctx.ClientIP),
		)
		return nil, rpc_types.RpcErrorCommandUntrusted(method)
	}

	// Check API version support
	supportedVersions := handler.SupportedApiVersions()
	if len(supportedVersions) > 0 {
		supported := false
		for _, version := range supportedVersions {
			if ctx.ApiVersion == version {
				supported = true
				break
			}
		}
		if !supported {
			return nil, rpc_types.RpcErrorInvalidApiVersion(strconv.Itoa(ctx.ApiVersion))
		}
	}

	start := time.Now()
	result, rpcErr := handler.Handle(ctx, params)
	observeRequest(method, rpcErr, time.Since(start))

	if rpcErr != nil {
		s.logger.Debug("method failed",
			zap.String("method", method),
			zap.Int("error_code", rpcErr.Code),
			zap.String("error", rpcErr.Message),
		)
	}
	return result, rpcErr
}

// writeXrplResponse writes an XRPL format JSON-RPC response
// result.status is "success" or "error", as in the XRPL API.
func (s *Server) writeXrplResponse(w http.ResponseWriter, method string, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	response := make(map[string]interface{})

	if rpcErr != nil {
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if rpcErr.Module != "" {
			resultObj["error_module"] = rpcErr.Module
			resultObj["error_module_code"] = rpcErr.ModuleCode
		}
		if request != nil {
			resultObj["request"] = request
		}
		response["result"] = resultObj
	} else {
		resultObj, err := successResult(result)
		if err != nil {
			s.logger.Error("failed to render result", zap.String("method", method), zap.Error(err))
			s.writeXrplError(w, request, "internal", "Failed to render result")
			return
		}
		response["result"] = resultObj
	}

	s.writeJSON(w, method, response)
}

// successResult merges "status": "success" into result. Maps and values
// encoding as JSON objects are merged field by field; anything else is
// kept under "data".
func successResult(result interface{}) (map[string]interface{}, error) {
	if resultMap, ok := result.(map[string]interface{}); ok {
		resultMap["status"] = "success"
		return resultMap, nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return map[string]interface{}{
			"status": "success",
			"data":   json.RawMessage(raw),
		}, nil
	}

	resultObj := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		resultObj[k] = v
	}
	resultObj["status"] = "success"
	return resultObj, nil
}

// writeXrplError writes an XRPL format error response
func (s *Server) writeXrplError(w http.ResponseWriter, request interface{}, errorCode string, message string) {
	resultObj := map[string]interface{}{
		"status":        "error",
		"error":         errorCode,
		"error_message": message,
	}
	if request != nil {
		resultObj["request"] = request
	}

	s.writeJSON(w, "", map[string]interface{}{"result": resultObj})
}

func (s *Server) writeJSON(w http.ResponseWriter, method string, response interface{}) {
	responseData, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal response", zap.String("method", method), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(responseData); err != nil {
		s.logger.Debug("failed to write response", zap.String("method", method), zap.Error(err))
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return remoteIP(r.RemoteAddr)
}

// remoteIP strips the port from a RemoteAddr.
func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
