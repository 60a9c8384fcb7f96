package cli

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewServiceLoggerNames(t *testing.T) {
	ctx := context.Background()
	defaults, err := config.Default()
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	dbCfg := config.DatabaseConfig{Type: config.DatabaseMemory, Name: "pricefeed"}
	service, server, closeDB, err := newService(defaults.Server, dbCfg, config.FeedConfig{}, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(closeDB)
	assert.Contains(t, server.Methods(), "price_feed_set_price")

	ts := httptest.NewServer(service.Handler())
	t.Cleanup(ts.Close)
	client := rpc.NewClient(ts.URL, 5*time.Second)

	_, err = client.SetPrice(ctx, currency.New("DOCK", "USD"), 1, 0, 1)
	require.NoError(t, err)
	assert.Error(t, client.Call(ctx, "price_feed_price", map[string]interface{}{"from": "DOCK"}, nil))

	published := logs.FilterMessage("price set").All()
	require.Len(t, published, 1)
	assert.Equal(t, "feed", published[0].LoggerName)

	failed := logs.FilterMessage("method failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "rpc", failed[0].LoggerName)
}

func TestNewServiceUnknownDatabase(t *testing.T) {
	defaults, err := config.Default()
	require.NoError(t, err)

	_, _, _, err = newService(defaults.Server, config.DatabaseConfig{Type: "mongo"}, config.FeedConfig{}, zap.NewNop())
	assert.Error(t, err)
}
