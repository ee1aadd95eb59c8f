package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goMIXR/internal/rpc"
)

var (
	rpcURL     string
	rpcCaller  string
	rpcTimeout time.Duration
)

// rpcCmd represents the rpc command group
var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "RPC client commands",
	Long: `Call a running mixrd over JSON-RPC. Operations that act for an address
take it from --caller; the daemon trusts whatever caller it is given.`,
}

func init() {
	rootCmd.AddCommand(rpcCmd)

	rpcCmd.PersistentFlags().StringVar(&rpcURL, "url", "http://127.0.0.1:5050/", "JSON-RPC endpoint")
	rpcCmd.PersistentFlags().StringVar(&rpcCaller, "caller", "", "address the operation is performed as")
	rpcCmd.PersistentFlags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "request timeout")

	rpcCmd.AddCommand(
		callCmd,
		// queries
		simpleCmd("server_info", "server_info", "Show ledger totals and parameters"),
		simpleCmd("assets", "basket_assets", "List basket assets"),
		argsCmd("asset <asset>", "basket_asset", "Show one basket asset", "asset"),
		argsCmd("quote <asset> <amount> <deposit|redemption>", "quote_fee", "Quote a fee without changing state", "asset", "amount", "direction"),
		simpleCmd("agents", "agents", "List nominated agents"),
		argsCmd("agent <agent>", "agent_info", "Show one agent with its stakes and rank", "agent"),
		rankingCmd,
		argsCmd("stakes-of <agent>", "stakes", "List the stakes on an agent", "agent"),
		argsCmd("stakes-by <backer>", "stakes", "List the stakes placed by a backer", "backer"),
		argsCmd("rewards <backer>", "rewards", "Show unclaimed rewards", "backer"),
		historyCmd,
		// operations
		callerCmd("deposit <asset> <amount>", "deposit", "Deposit native units of an asset", "asset", "amount"),
		callerCmd("redeem <asset> <amount>", "redeem", "Redeem MIXR for an asset", "asset", "amount"),
		stakeCmd,
		callerCmd("unstake <agent> <amount>", "remove_stake", "Withdraw stake from an agent", "agent", "amount"),
		callerCmd("payout", "payout_fees", "Run a payout cycle"),
		callerCmd("claim", "claim_rewards", "Claim accumulated rewards"),
		// governance
		registerAssetCmd,
		targetsCmd,
		callerCmd("set-base-fee <asset> <deposit|redemption> <fee>", "set_base_fee", "Set an asset's base fee", "asset", "direction", "fee"),
		callerCmd("set-minimum-fee <fee>", "set_minimum_fee", "Set the global fee floor", "value"),
		callerCmd("set-deviation-ceiling <ceiling>", "set_deviation_ceiling", "Set the deviation ceiling", "value"),
		callerCmd("set-minimum-nomination <amount>", "set_minimum_nomination_stake", "Set the first-stake minimum", "value"),
		ceilingCmd,
	)

	rankingCmd.Flags().Int("limit", 0, "show at most this many agents")
	historyCmd.Flags().String("op", "", "only this operation")
	historyCmd.Flags().Uint64("after", 0, "only entries after this sequence")
	historyCmd.Flags().Int("limit", 50, "maximum entries")
	stakeCmd.Flags().String("name", "", "agent name, required when nominating")
	stakeCmd.Flags().String("contact", "", "agent contact")
	registerAssetCmd.Flags().Uint8("decimals", 18, "asset decimals")
	registerAssetCmd.Flags().String("deposit-fee", "0", "base deposit fee")
	registerAssetCmd.Flags().String("redemption-fee", "0", "base redemption fee")
}

// Client is a minimal JSON-RPC 2.0 client for mixrd.
type Client struct {
	url  string
	http *http.Client
	id   int
}

// NewClient returns a client for the endpoint at url.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Call invokes method and returns the raw result. Protocol and ledger
// failures are returned as *rpc.RpcError.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.id++
	req := rpc.JsonRpcRequest{JsonRpc: "2.0", Method: method, ID: c.id}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameters: %w", err)
		}
		req.Params = raw
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Result json.RawMessage `json:"result"`
		Error  *rpc.RpcError   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}

// executeMethod calls method on the configured endpoint and pretty prints
// the result.
func executeMethod(cmd *cobra.Command, method string, params map[string]any) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
	defer cancel()

	var p any
	if len(params) > 0 {
		p = params
	}
	result, err := NewClient(rpcURL, rpcTimeout).Call(ctx, method, p)
	if err != nil {
		if rpcErr, ok := err.(*rpc.RpcError); ok {
			return fmt.Errorf("RPC error [%d %s]: %s", rpcErr.Code, rpcErr.Kind, rpcErr.Message)
		}
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	_, err := fmt.Fprintln(w, pretty.String())
	return err
}

// paramsFrom zips positional arguments with parameter names.
func paramsFrom(names []string, args []string) map[string]any {
	params := make(map[string]any, len(names)+1)
	for i, name := range names {
		params[name] = args[i]
	}
	return params
}

func withCaller(params map[string]any) (map[string]any, error) {
	if rpcCaller == "" {
		return nil, fmt.Errorf("--caller is required")
	}
	params["caller"] = rpcCaller
	return params, nil
}

func simpleCmd(use, method, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeMethod(cmd, method, nil)
		},
	}
}

func argsCmd(use, method, short string, names ...string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(len(names)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeMethod(cmd, method, paramsFrom(names, args))
		},
	}
}

func callerCmd(use, method, short string, names ...string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(len(names)),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := withCaller(paramsFrom(names, args))
			if err != nil {
				return err
			}
			return executeMethod(cmd, method, params)
		},
	}
}

// callCmd sends any method with raw JSON params.
var callCmd = &cobra.Command{
	Use:   "call <method> [params-json]",
	Short: "Call any method with raw JSON parameters",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]any{}
		if len(args) == 2 {
			if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
				return fmt.Errorf("invalid params: %w", err)
			}
		}
		return executeMethod(cmd, args[0], params)
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show the agent ranking, highest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return executeMethod(cmd, "ranking", map[string]any{"limit": limit})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		op, _ := cmd.Flags().GetString("op")
		after, _ := cmd.Flags().GetUint64("after")
		limit, _ := cmd.Flags().GetInt("limit")
		params := map[string]any{"after_seq": after, "limit": limit}
		if op != "" {
			params["op"] = op
		}
		if rpcCaller != "" {
			params["caller"] = rpcCaller
		}
		return executeMethod(cmd, "history", params)
	},
}

var stakeCmd = &cobra.Command{
	Use:   "stake <agent> <amount>",
	Short: "Stake BILD on an agent, nominating it with --name if new",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := withCaller(paramsFrom([]string{"agent", "amount"}, args))
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			params["name"] = name
		}
		if contact, _ := cmd.Flags().GetString("contact"); contact != "" {
			params["contact"] = contact
		}
		return executeMethod(cmd, "create_stake", params)
	},
}

var registerAssetCmd = &cobra.Command{
	Use:   "register-asset <address> <symbol>",
	Short: "Add an asset to the basket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := withCaller(paramsFrom([]string{"address", "symbol"}, args))
		if err != nil {
			return err
		}
		params["decimals"], _ = cmd.Flags().GetUint8("decimals")
		params["deposit_fee"], _ = cmd.Flags().GetString("deposit-fee")
		params["redemption_fee"], _ = cmd.Flags().GetString("redemption-fee")
		return executeMethod(cmd, "register_asset", params)
	},
}

var targetsCmd = &cobra.Command{
	Use:   "set-targets <asset>=<proportion>...",
	Short: "Replace every target proportion",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := make([]map[string]string, 0, len(args))
		for _, arg := range args {
			asset, proportion, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("target %q is not asset=proportion", arg)
			}
			targets = append(targets, map[string]string{"asset": asset, "proportion": proportion})
		}
		params, err := withCaller(map[string]any{"targets": targets})
		if err != nil {
			return err
		}
		return executeMethod(cmd, "set_target_proportions", params)
	},
}

var ceilingCmd = &cobra.Command{
	Use:   "set-reward-ceiling <n>",
	Short: "Set the size limit of the reward set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ceiling: %w", err)
		}
		params, err := withCaller(map[string]any{"value": n})
		if err != nil {
			return err
		}
		return executeMethod(cmd, "set_reward_ceiling", params)
	},
}
