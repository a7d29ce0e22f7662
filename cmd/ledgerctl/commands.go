package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	canton "github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/client"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/ledger"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/config"
)

type rootArgs struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	args := &rootArgs{}
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Inspect the Canton ledger and move tokens.",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&args.configPath, "config", "c", "config.yaml", "path to the gateway configuration file")
	flags.BoolVarP(&args.verbose, "verbose", "v", false, "log client activity to stderr")

	root.AddCommand(
		balanceCmd(args),
		transferCmd(args),
		queryCmd(args),
		healthCmd(args),
	)
	return root
}

// connect loads the configuration and builds the SDK client.
func connect(ctx context.Context, args *rootArgs) (*canton.Client, error) {
	cfg, err := config.Load(args.configPath)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if args.verbose {
		cfg.Logging.OutputPath = "stderr"
		if logger, err = config.NewLogger(cfg.Logging, "ledgerctl"); err != nil {
			return nil, err
		}
	}

	client, err := canton.NewFromAppConfig(ctx, cfg, canton.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create canton client: %w", err)
	}
	return client, nil
}

func balanceCmd(args *rootArgs) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "balance <party>",
		Short: "Print the token balances of a party.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			client, err := connect(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), client.Tokens.GetBalance(cmd.Context(), pos[0], symbol))
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "only report this token symbol")
	return cmd
}

func transferCmd(args *rootArgs) *cobra.Command {
	req := &token.TransferRequest{}
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer tokens between two parties.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			client, err := connect(cmd.Context(), args)
			if err != nil {
				return err
			}
			res := client.Tokens.Transfer(cmd.Context(), req)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Failed() {
				return fmt.Errorf("transfer failed: %s", res.Reason())
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.From, "from", "", "sending party")
	flags.StringVar(&req.To, "to", "", "receiving party")
	flags.StringVar(&req.Token.Symbol, "symbol", "", "token symbol")
	flags.StringVar(&req.Token.Amount, "amount", "", "decimal amount")
	flags.StringVar(&req.Reference, "reference", "", "optional reference recorded with the transfer")
	for _, name := range []string{"from", "to", "symbol", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func queryCmd(args *rootArgs) *cobra.Command {
	var where, or []string
	cmd := &cobra.Command{
		Use:   "query <templateId>",
		Short: "List active contracts of a template.",
		Long: `List active contracts of a template.

Every --where key=value must match. Every --or key=value adds one alternative,
of which at least one must match. Keys may be dotted paths into the payload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			query, err := buildQuery(where, or)
			if err != nil {
				return err
			}
			client, err := connect(cmd.Context(), args)
			if err != nil {
				return err
			}
			contracts, err := client.Ledger.Query(cmd.Context(), pos[0], query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contracts)
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "equality constraint key=value")
	cmd.Flags().StringArrayVar(&or, "or", nil, "alternative constraint key=value")
	return cmd
}

func healthCmd(args *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report whether the token backends are reachable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := connect(cmd.Context(), args)
			if err != nil {
				return err
			}
			healthy := client.Tokens.IsHealthy(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), map[string]bool{"healthy": healthy}); err != nil {
				return err
			}
			if !healthy {
				return fmt.Errorf("ledger is not healthy")
			}
			return nil
		},
	}
}

func buildQuery(where, or []string) (ledger.Query, error) {
	query := ledger.Query{}
	for _, w := range where {
		k, v, err := splitPair(w)
		if err != nil {
			return nil, err
		}
		query[k] = v
	}
	if len(or) > 0 {
		alts := make([]ledger.Query, 0, len(or))
		for _, o := range or {
			k, v, err := splitPair(o)
			if err != nil {
				return nil, err
			}
			alts = append(alts, ledger.Query{k: v})
		}
		query[ledger.OrKey] = ledger.Or(alts...)[ledger.OrKey]
	}
	return query, nil
}

func splitPair(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return k, v, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
