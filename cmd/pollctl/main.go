// Command pollctl operates a poll ledger directly, without the HTTP API.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pollledger/internal/app/bootstrap"
	"pollledger/internal/platform/config"
)

type rootOptions struct {
	backend     string
	ledgerPath  string
	postgresDSN string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "pollctl",
		Short:         "Operate a poll ledger from the command line",
		Long:          "Operate a poll ledger from the command line.\n\nEnvironment:\n" + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", "", "ledger backend (leveldb|postgres), overrides LEDGER_BACKEND")
	flags.StringVar(&opts.ledgerPath, "ledger-path", "", "leveldb directory, overrides LEDGER_PATH")
	flags.StringVar(&opts.postgresDSN, "postgres-dsn", "", "postgres DSN, overrides POSTGRES_DSN")

	cmd.AddCommand(
		newCreatePollCmd(opts),
		newAddCandidateCmd(opts),
		newVoteCmd(opts),
		newResultsCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

func (o *rootOptions) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if value := strings.TrimSpace(o.backend); value != "" {
		cfg.Ledger.Backend = strings.ToLower(value)
	}
	if value := strings.TrimSpace(o.ledgerPath); value != "" {
		cfg.Ledger.Path = value
	}
	if value := strings.TrimSpace(o.postgresDSN); value != "" {
		cfg.PostgresDSN = value
	}
	if cfg.Ledger.Backend == config.BackendMemory {
		return config.Config{}, fmt.Errorf("pollctl needs a persistent backend, got %q", cfg.Ledger.Backend)
	}
	return cfg, nil
}

// withLedger opens the configured ledger for one command and closes it
// afterwards.
func (o *rootOptions) withLedger(fn func(ledger *bootstrap.Ledger) error) (err error) {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	ledger, err := bootstrap.OpenLedger(cfg, nil, bootstrap.NewLogger(cfg, "pollctl"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(ledger)
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
