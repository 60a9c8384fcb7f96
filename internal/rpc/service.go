package rpc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/config"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Service exposes a Server over HTTP, with the WebSocket and metrics
// endpoints enabled by configuration.
type Service struct {
	cfg    config.ServerConfig
	server *Server
	ws     *WebSocketServer
	logger *zap.Logger
}

func NewService(cfg config.ServerConfig, server *Server) *Service {
	s := &Service{
		cfg:    cfg,
		server: server,
		logger: server.logger,
	}
	if cfg.WebSocket {
		s.ws = NewWebSocketServer(server)
	}
	return s
}

// Handler routes / to JSON-RPC, /ws to the WebSocket endpoint and
// /metrics to Prometheus.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.server)
	if s.ws != nil {
		mux.Handle("/ws", s.ws)
	}
	if s.cfg.Metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"pricefeedd"}`))
	})
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx
// is done or a stop is requested over RPC.
func (s *Service) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", s.cfg.Address())
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or a stop is requested over RPC,
// then shuts down gracefully. ln is closed on return.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("rpc server listening", zap.String("address", ln.Addr().String()))
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "rpc server failed")
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gCtx.Done():
		case <-s.server.Stopped():
		}

		s.logger.Info("rpc server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if s.ws != nil {
			s.ws.Close()
		}
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return pkgerrors.Wrap(err, "rpc server shutdown failed")
		}
		return nil
	})

	return g.Wait()
}
