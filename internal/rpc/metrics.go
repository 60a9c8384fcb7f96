package rpc

import (
	"sync"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricefeed_rpc_requests",
			Help: "Number of RPC method calls by method and status.",
		},
		[]string{"method", "status"},
	)
	requestLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "pricefeed_rpc_request_latency",
			Help: "RPC method latency (seconds).",
		},
		[]string{"method"},
	)
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricefeed_rpc_websocket_connections",
			Help: "Number of open WebSocket connections.",
		},
	)
	rpcCollectors = []prometheus.Collector{
		requests,
		requestLatency,
		wsConnections,
	}

	metricsOnce sync.Once
)

func observeRequest(method string, rpcErr *rpc_types.RpcError, took time.Duration) {
	status := "success"
	if rpcErr != nil {
		status = rpcErr.ErrorString
	}
	requests.WithLabelValues(method, status).Inc()
	requestLatency.WithLabelValues(method).Observe(took.Seconds())
}

func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(rpcCollectors...)
	})
}
