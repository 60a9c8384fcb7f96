package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/feed"
	"github.com/LeJamon/goPriceFeed/internal/rpc"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/LeJamon/goPriceFeed/internal/storage/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, feedCfg config.FeedConfig) (*feed.Keeper, *rpc.Client) {
	t.Helper()

	defaults, err := config.Default()
	require.NoError(t, err)

	keeper, err := feed.NewKeeper(memory.NewDB(), feedCfg, nil)
	require.NoError(t, err)

	server := rpc.NewServer(defaults.Server, &rpc_types.ServiceContainer{Feed: keeper}, nil)
	ts := httptest.NewServer(rpc.NewService(defaults.Server, server).Handler())
	t.Cleanup(ts.Close)

	return keeper, rpc.NewClient(ts.URL, 5*time.Second)
}

func TestPublishAndPrice(t *testing.T) {
	ctx := context.Background()
	keeper, client := newTestClient(t, config.FeedConfig{})

	var out bytes.Buffer
	require.NoError(t, runPublish(ctx, client, &out, []string{"DOCK/USD", "1.234", "7"}))

	var published rpc_types.PriceResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &published))
	require.NotNil(t, published.Price)
	assert.Equal(t, uint64(1234), published.Price.Amount)
	assert.Equal(t, uint32(3), published.Price.Decimals)
	assert.Equal(t, uint32(7), published.Price.BlockNumber)

	rec, err := keeper.PairPrice(ctx, currency.New("DOCK", "USD"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(1234), rec.Amount())

	out.Reset()
	require.NoError(t, runPrice(ctx, client, &out, []string{"DOCK/USD"}, nil))
	var latest rpc_types.PriceResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &latest))
	require.NotNil(t, latest.Price)
	assert.Equal(t, "1.234", latest.Price.Price)

	out.Reset()
	before := uint32(6)
	require.NoError(t, runPrice(ctx, client, &out, []string{"DOCK/USD"}, &before))
	var early rpc_types.PriceResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &early))
	assert.Nil(t, early.Price)
}

func TestPricePerUnitFlag(t *testing.T) {
	ctx := context.Background()
	keeper, client := newTestClient(t, config.FeedConfig{BoundPair: "DOCK/USD"})
	_, err := keeper.SetPrice(ctx, currency.New("DOCK", "USD"), 15, 1, 1)
	require.NoError(t, err)

	priceUnit = "10"
	t.Cleanup(func() { priceUnit = "" })

	var out bytes.Buffer
	require.NoError(t, runPrice(ctx, client, &out, nil, nil))
	var resp rpc_types.PricePerUnitResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, currency.New("DOCK", "USD"), resp.Pair)
	require.NotNil(t, resp.PricePerUnit)
	assert.Equal(t, "15", *resp.PricePerUnit)

	at := uint32(1)
	assert.Error(t, runPrice(ctx, client, &out, nil, &at))
}

func TestPublishArgErrors(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t, config.FeedConfig{})

	var out bytes.Buffer
	assert.Error(t, runPublish(ctx, client, &out, []string{"DOCKUSD", "1", "1"}))
	assert.Error(t, runPublish(ctx, client, &out, []string{"DOCK/USD", "x", "1"}))
	assert.Error(t, runPublish(ctx, client, &out, []string{"DOCK/USD", "1", "-1"}))
	assert.Error(t, runPublish(ctx, client, &out, []string{"DOCK/USD", "1", "4294967296"}))
	assert.Empty(t, out.String())
}
