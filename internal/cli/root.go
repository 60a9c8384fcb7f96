package cli

import (
	"fmt"
	"os"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/rpc"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	debug      bool
	quiet      bool

	// cfg is loaded before any command runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pricefeedd",
	Short: "pricefeedd - block-indexed currency price feed",
	Long: `pricefeedd stores the price of currency pairs as published at given
block numbers and serves them over JSON-RPC and WebSocket. The same binary
is the client of a running server.`,
	Version:           rpc.BuildVersion,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// initConfig reads the config file, when one is given, and PRICEFEED_
// environment variables.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if debug {
		loaded.Log.Level = "debug"
	}
	cfg = loaded
	return nil
}
