package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	coreerrors "github.com/LeJamon/goPriceFeed/internal/core/errors"
	"github.com/LeJamon/goPriceFeed/internal/feed"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/LeJamon/goPriceFeed/internal/storage/database/memory"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dockUSD = currency.New("DOCK", "USD")

type testEnv struct {
	keeper  *feed.Keeper
	server  *Server
	service *Service
	http    *httptest.Server
	client  *Client
}

func newTestEnv(t *testing.T, serverCfg config.ServerConfig, feedCfg config.FeedConfig) *testEnv {
	t.Helper()

	keeper, err := feed.NewKeeper(memory.NewDB(), feedCfg, nil)
	require.NoError(t, err)

	server := NewServer(serverCfg, &rpc_types.ServiceContainer{Feed: keeper}, nil)
	service := NewService(serverCfg, server)
	ts := httptest.NewServer(service.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		keeper:  keeper,
		server:  server,
		service: service,
		http:    ts,
		client:  NewClient(ts.URL, 5*time.Second),
	}
}

func adminConfig() config.ServerConfig {
	return config.ServerConfig{
		IP:        "127.0.0.1",
		Port:      5005,
		Metrics:   true,
		WebSocket: true,
		Admin:     []string{"127.0.0.1", "::1"},
	}
}

func guestConfig() config.ServerConfig {
	cfg := adminConfig()
	cfg.Admin = nil
	return cfg
}

func requireRpcError(t *testing.T, err error) *rpc_types.RpcError {
	t.Helper()
	require.Error(t, err)
	var rpcErr *rpc_types.RpcError
	require.True(t, errors.As(err, &rpcErr), "not an rpc error: %v", err)
	return rpcErr
}

func TestMethods(t *testing.T) {
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})
	assert.Equal(t, []string{
		"ping",
		"price_feed_aggregate_price",
		"price_feed_pairs",
		"price_feed_price",
		"price_feed_price_per_unit",
		"price_feed_set_price",
		"stop",
		"version",
	}, env.server.Methods())
}

func TestPing(t *testing.T) {
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})
	require.NoError(t, env.client.Ping(context.Background()))

	resp, err := http.Get(env.http.URL + "/?command=ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Result["status"])
	assert.Equal(t, "admin", body.Result["role"])
}

func TestPriceFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{CacheSize: 8})

	resp, err := env.client.Price(ctx, dockUSD, nil)
	require.NoError(t, err)
	assert.Equal(t, dockUSD, resp.Pair)
	assert.Nil(t, resp.Price)

	set, err := env.client.SetPrice(ctx, dockUSD, 1234, 3, 100)
	require.NoError(t, err)
	require.NotNil(t, set.Price)
	assert.Equal(t, "1.234", set.Price.Price)

	_, err = env.client.SetPrice(ctx, dockUSD, 1500, 3, 200)
	require.NoError(t, err)

	resp, err = env.client.Price(ctx, dockUSD, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Price)
	assert.Equal(t, rpc_types.PriceResult{Amount: 1500, Decimals: 3, BlockNumber: 200, Price: "1.5"}, *resp.Price)

	at := uint32(150)
	resp, err = env.client.Price(ctx, dockUSD, &at)
	require.NoError(t, err)
	require.NotNil(t, resp.Price)
	assert.Equal(t, uint64(1234), resp.Price.Amount)

	at = 99
	resp, err = env.client.Price(ctx, dockUSD, &at)
	require.NoError(t, err)
	assert.Nil(t, resp.Price)

	pairs, err := env.client.Pairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []currency.Pair[string, string]{dockUSD}, pairs)
}

func TestPricePerUnit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})

	resp, err := env.client.PricePerUnit(ctx, dockUSD, "32", false)
	require.NoError(t, err)
	assert.Nil(t, resp.Price)
	assert.Nil(t, resp.PricePerUnit)

	_, err = env.client.SetPrice(ctx, dockUSD, 1234, 3, 1)
	require.NoError(t, err)

	resp, err = env.client.PricePerUnit(ctx, dockUSD, "32", false)
	require.NoError(t, err)
	require.NotNil(t, resp.PricePerUnit)
	assert.Equal(t, "39", *resp.PricePerUnit)
	assert.Equal(t, "32", resp.UnitAmount)

	resp, err = env.client.PricePerUnit(ctx, dockUSD, "32", true)
	require.NoError(t, err)
	assert.Equal(t, "40", *resp.PricePerUnit)

	// Wider than 64 bits but within 256.
	resp, err = env.client.PricePerUnit(ctx, dockUSD, "1000000000000000000000", false)
	require.NoError(t, err)
	assert.Equal(t, "1234000000000000000000", *resp.PricePerUnit)

	_, err = env.client.PricePerUnit(ctx, dockUSD, strings.Repeat("9", 80), false)
	rpcErr := requireRpcError(t, err)
	assert.Equal(t, rpc_types.RpcGENERAL, rpcErr.Code)

	for _, bad := range []string{"-1", "1.5", "abc"} {
		_, err = env.client.PricePerUnit(ctx, dockUSD, bad, false)
		rpcErr = requireRpcError(t, err)
		assert.Equal(t, rpc_types.RpcINVALID_PARAMS, rpcErr.Code, bad)
	}
}

func TestAggregatePrice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})

	call := func(params map[string]interface{}) (map[string]interface{}, error) {
		params["from"] = "DOCK"
		params["to"] = "USD"
		var result map[string]interface{}
		err := env.client.Call(ctx, "price_feed_aggregate_price", params, &result)
		return result, err
	}

	_, err := call(map[string]interface{}{})
	rpcErr := requireRpcError(t, err)
	assert.Equal(t, rpc_types.RpcOBJECT_NOT_FOUND, rpcErr.Code)

	for i, amount := range []uint64{10, 20, 30, 40, 1000} {
		_, err := env.keeper.SetPrice(ctx, dockUSD, amount, 0, feed.BlockNumber(i+1))
		require.NoError(t, err)
	}

	result, err := call(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, float64(5), result["block_number"])
	assert.Equal(t, "30", result["median"])
	entire := result["entire_set"].(map[string]interface{})
	assert.Equal(t, "220", entire["mean"])
	assert.Equal(t, float64(5), entire["size"])
	assert.NotContains(t, result, "trimmed_set")

	result, err = call(map[string]interface{}{"count": 4, "trim": 25})
	require.NoError(t, err)
	assert.Equal(t, "35", result["median"])
	assert.Equal(t, "272.5", result["entire_set"].(map[string]interface{})["mean"])
	trimmed := result["trimmed_set"].(map[string]interface{})
	assert.Equal(t, "35", trimmed["mean"])
	assert.Equal(t, float64(2), trimmed["size"])

	result, err = call(map[string]interface{}{"block_threshold": 1})
	require.NoError(t, err)
	assert.Equal(t, "520", result["entire_set"].(map[string]interface{})["mean"])

	result, err = call(map[string]interface{}{"at": 3})
	require.NoError(t, err)
	assert.Equal(t, float64(3), result["block_number"])
	entire = result["entire_set"].(map[string]interface{})
	assert.Equal(t, "20", entire["mean"])
	assert.Equal(t, "10", entire["standard_deviation"])

	for _, params := range []map[string]interface{}{{"count": 0}, {"count": 201}, {"trim": 26}} {
		_, err = call(params)
		rpcErr = requireRpcError(t, err)
		assert.Equal(t, rpc_types.RpcINVALID_PARAMS, rpcErr.Code)
	}
	_, err = call(map[string]interface{}{"trim": 26})
	assert.Equal(t, "trim must be between 0 and 25", requireRpcError(t, err).Message)

	// No trimming is a valid request.
	_, err = call(map[string]interface{}{"trim": 0})
	require.NoError(t, err)
}

func TestTypedResultsAreFlat(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})
	_, err := env.keeper.SetPrice(ctx, dockUSD, 15, 1, 2)
	require.NoError(t, err)

	tests := []struct {
		method string
		params string
		fields []string
	}{
		{"price_feed_price", `{"from":"DOCK","to":"USD"}`, []string{"pair", "price"}},
		{"price_feed_price_per_unit", `{"from":"DOCK","to":"USD","unit_amount":"10"}`, []string{"pair", "price", "unit_amount", "price_per_unit"}},
		{"price_feed_pairs", ``, []string{"pairs"}},
		{"price_feed_aggregate_price", `{"from":"DOCK","to":"USD"}`, []string{"pair", "block_number", "entire_set", "median"}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			body := `{"method":"` + tt.method + `"}`
			if tt.params != "" {
				body = `{"method":"` + tt.method + `","params":[` + tt.params + `]}`
			}
			resp, err := http.Post(env.http.URL, "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			var envelope struct {
				Result map[string]json.RawMessage `json:"result"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
			assert.JSONEq(t, `"success"`, string(envelope.Result["status"]))
			assert.NotContains(t, envelope.Result, "data")
			for _, field := range tt.fields {
				assert.Contains(t, envelope.Result, field)
			}
		})
	}

	var perUnit rpc_types.PricePerUnitResponse
	require.NoError(t, env.client.Call(ctx, "price_feed_price_per_unit",
		map[string]interface{}{"from": "DOCK", "to": "USD", "unit_amount": "10"}, &perUnit))
	assert.Equal(t, dockUSD, perUnit.Pair)
	require.NotNil(t, perUnit.PricePerUnit)
	assert.Equal(t, "15", *perUnit.PricePerUnit)
}

func TestSuccessResult(t *testing.T) {
	obj, err := successResult(map[string]interface{}{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1, "status": "success"}, obj)

	obj, err = successResult(&rpc_types.PairsResponse{})
	require.NoError(t, err)
	assert.Equal(t, "success", obj["status"])
	assert.Contains(t, obj, "pairs")

	obj, err = successResult([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "success", obj["status"])
	assert.Equal(t, json.RawMessage(`[1,2]`), obj["data"])
}

func TestInvalidArgumentIsFlattened(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})

	long := currency.New(strings.Repeat("X", feed.MaxSymbolBytes+1), "USD")
	_, err := env.client.Price(ctx, long, nil)
	rpcErr := requireRpcError(t, err)
	assert.Equal(t, rpc_types.RpcGENERAL, rpcErr.Code)
	assert.Equal(t, "runtimeError", rpcErr.ErrorString)
	assert.Contains(t, rpcErr.Message, "exceeds max allowed")
	assert.Equal(t, feed.ModuleName, rpcErr.Module)
	assert.True(t, coreerrors.Is(rpcErr.Err(), feed.ErrInvalidArgument))

	_, err = env.client.SetPrice(ctx, long, 1, 0, 1)
	rpcErr = requireRpcError(t, err)
	assert.True(t, coreerrors.Is(rpcErr.Err(), feed.ErrInvalidArgument))
}

func TestParamErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})

	tests := []struct {
		name   string
		method string
		params interface{}
		code   int
		msg    string
	}{
		{"missing from", "price_feed_price", map[string]interface{}{"to": "USD"}, rpc_types.RpcINVALID_PARAMS, "Missing field 'from'."},
		{"missing to", "price_feed_price", map[string]interface{}{"from": "DOCK"}, rpc_types.RpcINVALID_PARAMS, "Missing field 'to'."},
		{"no bound pair", "price_feed_price", nil, rpc_types.RpcINVALID_PARAMS, "Missing field 'from'."},
		{"bad at", "price_feed_price", map[string]interface{}{"from": "DOCK", "to": "USD", "at": "soon"}, rpc_types.RpcINVALID_PARAMS, ""},
		{"missing amount", "price_feed_set_price", map[string]interface{}{"from": "DOCK", "to": "USD", "block_number": 1}, rpc_types.RpcINVALID_PARAMS, "Missing field 'amount'."},
		{"missing block", "price_feed_set_price", map[string]interface{}{"from": "DOCK", "to": "USD", "amount": 1}, rpc_types.RpcINVALID_PARAMS, "Missing field 'block_number'."},
		{"decimals overflow", "price_feed_set_price", map[string]interface{}{"from": "DOCK", "to": "USD", "amount": 1, "decimals": 256, "block_number": 1}, rpc_types.RpcINVALID_PARAMS, ""},
		{"missing unit", "price_feed_price_per_unit", map[string]interface{}{"from": "DOCK", "to": "USD"}, rpc_types.RpcINVALID_PARAMS, "Missing field 'unit_amount'."},
		{"unknown method", "account_info", nil, rpc_types.RpcMETHOD_NOT_FOUND, "Unknown method: account_info"},
		{"api version", "ping", map[string]interface{}{"api_version": 9}, rpc_types.RpcINVALID_API_VERSION, "Invalid API version: 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.client.Call(ctx, tt.method, tt.params, nil)
			rpcErr := requireRpcError(t, err)
			assert.Equal(t, tt.code, rpcErr.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, rpcErr.Message)
			}
		})
	}
}

func TestAdminMethodsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, guestConfig(), config.FeedConfig{})

	_, err := env.client.SetPrice(ctx, dockUSD, 1, 0, 1)
	rpcErr := requireRpcError(t, err)
	assert.Equal(t, rpc_types.RpcCOMMAND_UNTRUSTED, rpcErr.Code)

	rec, err := env.keeper.PairPrice(ctx, dockUSD)
	require.NoError(t, err)
	assert.Nil(t, rec)

	err = env.client.Stop(ctx)
	rpcErr = requireRpcError(t, err)
	assert.Equal(t, rpc_types.RpcCOMMAND_UNTRUSTED, rpcErr.Code)

	// Forwarding headers do not grant the admin role.
	body := `{"method":"stop"}`
	req, err := http.NewRequest(http.MethodPost, env.http.URL, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	select {
	case <-env.server.Stopped():
		t.Fatal("guest stopped the server")
	default:
	}
}

func TestBoundPair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{BoundPair: "DOCK/USD"})

	_, err := env.keeper.SetPrice(ctx, dockUSD, 7, 0, 3)
	require.NoError(t, err)

	var resp rpc_types.PriceResponse
	require.NoError(t, env.client.Call(ctx, "price_feed_price", nil, &resp))
	assert.Equal(t, dockUSD, resp.Pair)
	require.NotNil(t, resp.Price)
	assert.Equal(t, uint64(7), resp.Price.Amount)

	require.NoError(t, env.client.Call(ctx, "price_feed_price", map[string]interface{}{"at": 2}, &resp))
	assert.Nil(t, resp.Price)
}

func TestGetRequestParams(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})
	_, err := env.keeper.SetPrice(ctx, dockUSD, 5, 1, 10)
	require.NoError(t, err)

	resp, err := http.Get(env.http.URL + "/?command=price_feed_price&from=DOCK&to=USD&at=10")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Result struct {
			Status string                 `json:"status"`
			Price  *rpc_types.PriceResult `json:"price"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Result.Status)
	require.NotNil(t, body.Result.Price)
	assert.Equal(t, "0.5", body.Result.Price.Price)
}

func TestMalformedRequests(t *testing.T) {
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})

	for body, want := range map[string]string{
		`{not json`:       "jsonInvalid",
		`{"params":[{}]}`: "missingCommand",
	} {
		resp, err := http.Post(env.http.URL, "application/json", strings.NewReader(body))
		require.NoError(t, err)

		var decoded struct {
			Result map[string]interface{} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		resp.Body.Close()
		assert.Equal(t, "error", decoded.Result["status"])
		assert.Equal(t, want, decoded.Result["error"])
	}

	req, err := http.NewRequest(http.MethodDelete, env.http.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})
	require.NoError(t, env.client.Ping(context.Background()))

	resp, err := http.Get(env.http.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pricefeed_rpc_requests")
}

func TestWebSocket(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, adminConfig(), config.FeedConfig{})
	_, err := env.keeper.SetPrice(ctx, dockUSD, 1234, 3, 42)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":      1,
		"command": "price_feed_price",
		"from":    "DOCK",
		"to":      "USD",
	}))
	var resp struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
		Type   string `json:"type"`
		Result struct {
			Price rpc_types.PriceResult `json:"price"`
		} `json:"result"`
	}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "response", resp.Type)
	assert.Equal(t, uint32(42), resp.Result.Price.BlockNumber)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": 2, "command": "subscribe"}))
	var errResp rpc_types.WebSocketResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "error", errResp.Status)
	assert.Equal(t, rpc_types.RpcNOT_SUPPORTED, errResp.ErrorCode)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": 3}))
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "missingCommand", errResp.Error)

	assert.Eventually(t, func() bool { return env.service.ws.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestServeStopsOnContextAndStop(t *testing.T) {
	for _, viaRPC := range []bool{false, true} {
		keeper, err := feed.NewKeeper(memory.NewDB(), config.FeedConfig{}, nil)
		require.NoError(t, err)
		cfg := adminConfig()
		server := NewServer(cfg, &rpc_types.ServiceContainer{Feed: keeper}, nil)
		service := NewService(cfg, server)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- service.Serve(ctx, ln) }()

		client := NewClient("http://"+ln.Addr().String(), 5*time.Second)
		require.Eventually(t, func() bool { return client.Ping(ctx) == nil }, 5*time.Second, 10*time.Millisecond)

		if viaRPC {
			require.NoError(t, client.Stop(ctx))
		} else {
			cancel()
		}

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
		}
		cancel()
	}
}
