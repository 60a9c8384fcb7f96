package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsMaxMessageSize = 512 * 1024
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsWriteWait      = 10 * time.Second
	wsSendBuffer     = 256
)

// WebSocketServer answers RPC commands over WebSocket connections using
// the method registry of the HTTP server. It is request/response only.
type WebSocketServer struct {
	server           *Server
	upgrader         websocket.Upgrader
	connections      map[string]*WebSocketConnection
	connectionsMutex sync.RWMutex
	logger           *zap.Logger
}

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	ID          string
	conn        *websocket.Conn
	sendChannel chan []byte
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once

	// Fixed at upgrade time.
	role     rpc_types.Role
	clientIP string
}

// NewWebSocketServer creates a WebSocket endpoint for server.
func NewWebSocketServer(server *Server) *WebSocketServer {
	return &WebSocketServer{
		server: server,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins (matching rippled behavior)
				return true
			},
		},
		connections: make(map[string]*WebSocketConnection),
		logger:      server.logger.Named("ws"),
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	// The connection outlives the upgrade request.
	ctx, cancel := context.WithCancel(context.Background())

	rpcCtx := ws.server.newContext(r)
	wsConn := &WebSocketConnection{
		ID:          uuid.NewString(),
		conn:        conn,
		sendChannel: make(chan []byte, wsSendBuffer),
		ctx:         ctx,
		cancel:      cancel,
		role:        rpcCtx.Role,
		clientIP:    rpcCtx.ClientIP,
	}

	ws.connectionsMutex.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.connectionsMutex.Unlock()
	wsConnections.Inc()

	ws.logger.Debug("connection opened",
		zap.String("id", wsConn.ID),
		zap.String("client_ip", wsConn.clientIP),
	)

	go ws.handleConnection(wsConn)
	go ws.handleSend(wsConn)
}

// ConnectionCount returns the number of open connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.connectionsMutex.RLock()
	defer ws.connectionsMutex.RUnlock()
	return len(ws.connections)
}

// Close closes every open connection.
func (ws *WebSocketServer) Close() {
	ws.connectionsMutex.RLock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, conn := range ws.connections {
		conns = append(conns, conn)
	}
	ws.connectionsMutex.RUnlock()

	for _, conn := range conns {
		ws.closeConnection(conn)
	}
}

// handleConnection reads commands until the connection fails or closes.
func (ws *WebSocketServer) handleConnection(wsConn *WebSocketConnection) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsMaxMessageSize)
	_ = wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Debug("read failed", zap.String("id", wsConn.ID), zap.Error(err))
			}
			return
		}
		ws.handleMessage(wsConn, message)
	}
}

// handleSend writes queued responses and keeps the connection alive.
func (ws *WebSocketServer) handleSend(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsConn.ctx.Done():
			return
		case message := <-wsConn.sendChannel:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.logger.Debug("send failed", zap.String("id", wsConn.ID), zap.Error(err))
				ws.closeConnection(wsConn)
				return
			}
		case <-ticker.C:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.closeConnection(wsConn)
				return
			}
		}
	}
}

// handleMessage processes a single message from WebSocket
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, message []byte) {
	// Command and params are at the top level of the message
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, rpc_types.RpcErrorInvalidParams("Invalid JSON: "+err.Error()), nil)
		return
	}

	var cmd rpc_types.WebSocketCommand
	if raw, exists := cmdMap["id"]; exists {
		_ = json.Unmarshal(raw, &cmd.ID)
	}

	raw, exists := cmdMap["command"]
	if !exists || json.Unmarshal(raw, &cmd.Command) != nil || cmd.Command == "" {
		ws.sendError(wsConn, rpc_types.NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing command field"), cmd.ID)
		return
	}

	apiVersion := rpc_types.DefaultApiVersion
	if raw, exists := cmdMap["api_version"]; exists {
		var version int
		if err := json.Unmarshal(raw, &version); err == nil {
			apiVersion = version
		}
	}

	// Remaining fields are the params
	delete(cmdMap, "command")
	delete(cmdMap, "id")
	delete(cmdMap, "api_version")
	if len(cmdMap) > 0 {
		cmd.Params, _ = json.Marshal(cmdMap)
	}

	switch cmd.Command {
	case "subscribe", "unsubscribe", "path_find":
		ws.sendError(wsConn, rpc_types.NewRpcError(rpc_types.RpcNOT_SUPPORTED, "notSupported", "notSupported",
			cmd.Command+" is not supported"), cmd.ID)
		return
	}

	rpcCtx := &rpc_types.RpcContext{
		Context:    wsConn.ctx,
		Role:       wsConn.role,
		ApiVersion: apiVersion,
		IsAdmin:    wsConn.role == rpc_types.RoleAdmin,
		ClientIP:   wsConn.clientIP,
	}

	result, rpcErr := ws.server.executeMethod(cmd.Command, cmd.Params, rpcCtx)
	if rpcErr != nil {
		ws.sendError(wsConn, rpcErr, cmd.ID)
		return
	}

	ws.sendResponse(wsConn, rpc_types.WebSocketResponse{
		Type:       "response",
		ID:         cmd.ID,
		Status:     "success",
		Result:     result,
		ApiVersion: apiVersion,
	})
}

// sendResponse sends a WebSocket response
func (ws *WebSocketServer) sendResponse(wsConn *WebSocketConnection, response rpc_types.WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.logger.Error("failed to marshal response", zap.Error(err))
		return
	}
	ws.enqueue(wsConn, data)
}

// sendError sends a WebSocket error response with flat error fields (XRPL format)
func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, rpcErr *rpc_types.RpcError, id interface{}) {
	ws.sendResponse(wsConn, rpc_types.WebSocketResponse{
		Type:         "response",
		ID:           id,
		Status:       "error",
		Error:        rpcErr.ErrorString,
		ErrorCode:    rpcErr.Code,
		ErrorMessage: rpcErr.Message,
	})
}

func (ws *WebSocketServer) enqueue(wsConn *WebSocketConnection, data []byte) {
	select {
	case wsConn.sendChannel <- data:
	case <-wsConn.ctx.Done():
	default:
		// Channel full, close connection
		ws.logger.Warn("send buffer full, closing connection", zap.String("id", wsConn.ID))
		ws.closeConnection(wsConn)
	}
}

// closeConnection closes a WebSocket connection. It is safe to call more
// than once.
func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.closeOnce.Do(func() {
		wsConn.cancel()

		ws.connectionsMutex.Lock()
		delete(ws.connections, wsConn.ID)
		ws.connectionsMutex.Unlock()
		wsConnections.Dec()

		_ = wsConn.conn.Close()

		ws.logger.Debug("connection closed", zap.String("id", wsConn.ID))
	})
}
