package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/feed"
	"github.com/LeJamon/goPriceFeed/internal/logging"
	"github.com/LeJamon/goPriceFeed/internal/rpc"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/LeJamon/goPriceFeed/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Server flags
	port     int
	bindAddr string
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the price feed server",
	Long: `Start the pricefeedd server which provides:
- HTTP JSON-RPC API endpoints
- WebSocket endpoint answering the same methods
- Prometheus metrics and health check endpoints

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}

	// Server-specific flags, overriding [server] ip and port
	serverCmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on")
	serverCmd.Flags().StringVar(&bindAddr, "bind", "", "address to bind to")
}

func runServer(cmd *cobra.Command, args []string) error {
	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if bindAddr != "" {
		serverCfg.IP = bindAddr
	}
	if err := serverCfg.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dbCfg := cfg.Database
	dbCfg.Path = cfg.ResolvePath(dbCfg.Path)
	service, server, closeDB, err := newService(serverCfg, dbCfg, cfg.Feed, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if !quiet {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Starting pricefeedd")
		fmt.Fprintf(out, "  - HTTP JSON-RPC: http://%s/\n", serverCfg.Address())
		if serverCfg.WebSocket {
			fmt.Fprintf(out, "  - WebSocket:     ws://%s/ws\n", serverCfg.Address())
		}
		if serverCfg.Metrics {
			fmt.Fprintf(out, "  - Metrics:       http://%s/metrics\n", serverCfg.Address())
		}
		fmt.Fprintf(out, "  - Health Check:  http://%s/health\n", serverCfg.Address())
		fmt.Fprintf(out, "  - Database:      %s (%s)\n", dbCfg.Type, dbCfg.Path)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting pricefeedd",
		zap.String("version", rpc.BuildVersion),
		zap.String("database", dbCfg.Type),
		zap.Strings("methods", server.Methods()),
	)
	if err := service.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("pricefeedd stopped")
	return nil
}

// newService opens the database and wires the feed into an RPC service.
// Components name their own child of logger. closeDB releases the
// database.
func newService(
	serverCfg config.ServerConfig,
	dbCfg config.DatabaseConfig,
	feedCfg config.FeedConfig,
	logger *zap.Logger,
) (*rpc.Service, *rpc.Server, func(), error) {
	manager, db, err := storage.Open(dbCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open %s database: %w", dbCfg.Type, err)
	}
	closeDB := func() {
		if err := manager.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}

	keeper, err := feed.NewKeeper(db, feedCfg, logger)
	if err != nil {
		closeDB()
		return nil, nil, nil, err
	}

	server := rpc.NewServer(serverCfg, &rpc_types.ServiceContainer{Feed: keeper}, logger)
	return rpc.NewService(serverCfg, server), server, closeDB, nil
}
