package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	timeout time.Duration
	token   string
	userID  int64
	role    string
}

// migrate hooks, swapped in tests.
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "walletledger-cli",
		Short:         "walletledger CLI tool",
		Long:          `A command line interface for interacting with the walletledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the walletledger API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.token, "token", os.Getenv("WALLETLEDGER_TOKEN"), "Bearer token")
	flags.Int64Var(&opts.userID, "user", 0, "User id sent as X-User-ID when no token is given")
	flags.StringVar(&opts.role, "role", string(domain.RoleCustomer), "Role sent as X-User-Role when no token is given")

	rootCmd.AddCommand(
		depositCmd(opts),
		transferCmd(opts),
		withdrawCmd(opts),
		balanceCmd(opts),
		historyCmd(opts),
		openAccountCmd(opts),
		statsCmd(opts),
		tokenCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func depositCmd(opts *options) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "deposit <account-id> <amount>",
		Short: "Deposit funds into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return newClient(opts).post(cmd.OutOrStdout(), "/api/v1/deposit", map[string]any{
				"account_id":      accountID,
				"amount":          amount,
				"idempotency_key": keyOrNew(key),
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key (generated when empty)")
	return cmd
}

func transferCmd(opts *options) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "transfer <source-id> <destination-id> <amount>",
		Short: "Transfer funds between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseID(args[0])
			if err != nil {
				return err
			}
			dst, err := parseID(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return newClient(opts).post(cmd.OutOrStdout(), "/api/v1/transfer", map[string]any{
				"source_account_id":      src,
				"destination_account_id": dst,
				"amount":                 amount,
				"idempotency_key":        keyOrNew(key),
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key (generated when empty)")
	return cmd
}

func withdrawCmd(opts *options) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "withdraw <account-id> <amount>",
		Short: "Withdraw funds to the external system",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return newClient(opts).post(cmd.OutOrStdout(), "/api/v1/withdraw", map[string]any{
				"account_id":      accountID,
				"amount":          amount,
				"idempotency_key": keyOrNew(key),
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key (generated when empty)")
	return cmd
}

func balanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return newClient(opts).get(cmd.OutOrStdout(), fmt.Sprintf("/api/v1/accounts/%d/balance", accountID))
		},
	}
}

func historyCmd(opts *options) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "Show an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return newClient(opts).get(cmd.OutOrStdout(),
				fmt.Sprintf("/api/v1/accounts/%d/transactions?page=%d", accountID, page))
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func openAccountCmd(opts *options) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "open-account <owner-id>",
		Short: "Open an account for a user (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			body := map[string]any{"owner_id": ownerID}
			if currency != "" {
				body["currency"] = currency
			}
			return newClient(opts).post(cmd.OutOrStdout(), "/api/v1/admin/accounts", body)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code (defaults to "+domain.DefaultCurrency+")")
	return cmd
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger statistics (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(opts).get(cmd.OutOrStdout(), "/api/v1/admin/stats")
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}
			userID, err := parseID(args[0])
			if err != nil {
				return err
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Principal{
				UserID: userID,
				Role:   domain.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	run := func(fn func(string, string, zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})
			return fn(cfg.DatabaseURL, cfg.MigrationsPath, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(migrateUp)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", Args: cobra.NoArgs, RunE: run(migrateDown)},
	)
	return cmd
}

type client struct {
	opts *options
	http *http.Client
}

func newClient(opts *options) *client {
	return &client{opts: opts, http: &http.Client{Timeout: opts.timeout}}
}

func (c *client) get(out io.Writer, path string) error {
	return c.do(out, http.MethodGet, path, nil)
}

func (c *client) post(out io.Writer, path string, body any) error {
	return c.do(out, http.MethodPost, path, body)
}

func (c *client) do(out io.Writer, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.opts.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.opts.token != "":
		req.Header.Set("Authorization", "Bearer "+c.opts.token)
	case c.opts.userID > 0:
		req.Header.Set("X-User-ID", strconv.FormatInt(c.opts.userID, 10))
		req.Header.Set("X-User-Role", c.opts.role)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	printJSON(out, data)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Idempotency-Replay") == "true" {
		fmt.Fprintln(out, "(replayed)")
	}
	return nil
}

func printJSON(out io.Writer, data []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintln(out, buf.String())
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseAmount(raw string) (string, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q", raw)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return "", err
	}
	return amount.StringFixed(domain.AmountScale), nil
}

func keyOrNew(key string) string {
	if key != "" {
		return key
	}
	return uuid.NewString()
}
