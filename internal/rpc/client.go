package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// RequestIDHeader carries the client generated id of a request.
const RequestIDHeader = "X-Request-Id"

// Client calls a pricefeedd server over HTTP JSON-RPC.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

type responseEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type responseStatus struct {
	Status string `json:"status"`
	rpc_types.RpcError
}

// Call invokes method with params and decodes the result into result.
// A method failure is returned as a *rpc_types.RpcError.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	request := XrplRequest{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to marshal params")
		}
		request.Params = []json.RawMessage{raw}
	}
	body, err := json.Marshal(request)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "%s failed", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Errorf("%s failed: http status %s", method, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRequestBody))
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read %s response", method)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return pkgerrors.Wrapf(err, "invalid %s response", method)
	}
	var status responseStatus
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return pkgerrors.Wrapf(err, "invalid %s response", method)
	}
	if status.Status != "success" {
		rpcErr := status.RpcError
		return &rpcErr
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return pkgerrors.Wrapf(err, "invalid %s result", method)
	}
	return nil
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.Call(ctx, "ping", nil, nil)
}

// Price returns the latest price of pair, or the one in effect at block
// at when it is not nil.
func (c *Client) Price(ctx context.Context, pair currency.Pair[string, string], at *uint32) (*rpc_types.PriceResponse, error) {
	params := map[string]interface{}{"from": pair.From(), "to": pair.To()}
	if at != nil {
		params["at"] = *at
	}
	var result rpc_types.PriceResponse
	if err := c.Call(ctx, "price_feed_price", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PricePerUnit returns the price of unitAmount units of the from
// currency of pair.
func (c *Client) PricePerUnit(
	ctx context.Context,
	pair currency.Pair[string, string],
	unitAmount string,
	roundUp bool,
) (*rpc_types.PricePerUnitResponse, error) {
	params := map[string]interface{}{
		"from":        pair.From(),
		"to":          pair.To(),
		"unit_amount": unitAmount,
		"round_up":    roundUp,
	}
	var result rpc_types.PricePerUnitResponse
	if err := c.Call(ctx, "price_feed_price_per_unit", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetPrice publishes a price. The server only accepts it from admin
// clients.
func (c *Client) SetPrice(
	ctx context.Context,
	pair currency.Pair[string, string],
	amount uint64,
	decimals uint8,
	blockNumber uint32,
) (*rpc_types.PriceResponse, error) {
	params := map[string]interface{}{
		"from":         pair.From(),
		"to":           pair.To(),
		"amount":       amount,
		"decimals":     decimals,
		"block_number": blockNumber,
	}
	var result rpc_types.PriceResponse
	if err := c.Call(ctx, "price_feed_set_price", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Pairs lists the pairs with a published price.
func (c *Client) Pairs(ctx context.Context) ([]currency.Pair[string, string], error) {
	var result rpc_types.PairsResponse
	if err := c.Call(ctx, "price_feed_pairs", nil, &result); err != nil {
		return nil, err
	}
	return result.Pairs, nil
}

// Stop asks the server to shut down.
func (c *Client) Stop(ctx context.Context) error {
	return c.Call(ctx, "stop", nil, nil)
}
