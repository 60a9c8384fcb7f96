package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/rpc"
	"github.com/spf13/cobra"
)

var (
	// Client flags
	rpcURL     string
	rpcTimeout time.Duration

	priceAt      uint32
	priceUnit    string
	priceRoundUp bool

	publishDecimals int
)

// rpcCmd calls any method of a running server
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call an RPC method on a running server",
	Long:  `Send a JSON-RPC request to a running pricefeedd and print the result.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params interface{}
		if len(args) > 1 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("params must be a JSON object: %s", args[1])
			}
			params = json.RawMessage(args[1])
		}
		var result json.RawMessage
		if err := newClient().Call(cmd.Context(), args[0], params, &result); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Ping(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "pong")
		return nil
	},
}

var priceCmd = &cobra.Command{
	Use:   "price [FROM/TO]",
	Short: "Get the price of a pair",
	Long: `Get the latest price of a pair, or the one in effect at a block with --at.
Without a pair, the bound pair of the server is used. With --unit, the price
of that many units of FROM is returned as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var at *uint32
		if cmd.Flags().Changed("at") {
			at = &priceAt
		}
		return runPrice(cmd.Context(), newClient(), cmd.OutOrStdout(), args, at)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <FROM/TO> <price> <block>",
	Short: "Publish the price of a pair at a block",
	Long: `Publish a price such as 1.234 for a pair at a block number. The number
of decimals is taken from the price unless --decimals is given. Requires an
admin connection to the server.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish(cmd.Context(), newClient(), cmd.OutOrStdout(), args)
	},
}

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the pairs with a published price",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, err := newClient().Pairs(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, pair := range pairs {
			fmt.Fprintln(out, pair.String())
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().Stop(cmd.Context())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{rpcCmd, pingCmd, priceCmd, publishCmd, pairsCmd, stopCmd} {
		cmd.Flags().StringVar(&rpcURL, "rpc", "", "server URL (default: derived from [server])")
		cmd.Flags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "request timeout")
		rootCmd.AddCommand(cmd)
	}

	priceCmd.Flags().Uint32Var(&priceAt, "at", 0, "block number the price must be in effect at")
	priceCmd.Flags().StringVar(&priceUnit, "unit", "", "number of FROM units to price")
	priceCmd.Flags().BoolVar(&priceRoundUp, "round-up", false, "round the per-unit price up")

	publishCmd.Flags().IntVar(&publishDecimals, "decimals", -1, "number of decimals of the stored amount")
}

func newClient() *rpc.Client {
	url := rpcURL
	if url == "" {
		url = defaultRPCURL(cfg.Server)
	}
	return rpc.NewClient(url, rpcTimeout)
}

// defaultRPCURL addresses the server configured in s, through loopback
// when it listens on every interface.
func defaultRPCURL(s config.ServerConfig) string {
	host := s.IP
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port)) + "/"
}

// parsePairArg parses the optional pair argument. No argument selects the
// bound pair of the server.
func parsePairArg(args []string) (currency.Pair[string, string], error) {
	if len(args) == 0 {
		return currency.Pair[string, string]{}, nil
	}
	return currency.ParsePair(args[0])
}

func runPrice(ctx context.Context, client *rpc.Client, out io.Writer, args []string, at *uint32) error {
	pair, err := parsePairArg(args)
	if err != nil {
		return err
	}
	if priceUnit != "" {
		if at != nil {
			return fmt.Errorf("--at and --unit cannot be combined")
		}
		result, err := client.PricePerUnit(ctx, pair, priceUnit, priceRoundUp)
		if err != nil {
			return err
		}
		return printJSON(out, result)
	}
	result, err := client.Price(ctx, pair, at)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func runPublish(ctx context.Context, client *rpc.Client, out io.Writer, args []string) error {
	pair, err := currency.ParsePair(args[0])
	if err != nil {
		return err
	}
	amount, decimals, err := parsePrice(args[1], publishDecimals)
	if err != nil {
		return err
	}
	block, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return fmt.Errorf("block must be a 32-bit unsigned integer, got %q", args[2])
	}
	result, err := client.SetPrice(ctx, pair, amount, decimals, uint32(block))
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func printJSON(out io.Writer, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(prettyJSON))
	return err
}
