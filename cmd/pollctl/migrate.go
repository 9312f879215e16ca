package main

import (
	"fmt"

	"github.com/spf13/cobra"

	postgresadapter "pollledger/contexts/governance/poll-ledger/adapters/postgres"
	"pollledger/internal/app/bootstrap"
	"pollledger/internal/platform/config"
	"pollledger/internal/platform/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate <up|down|version>",
		Short:     "Apply or inspect the postgres ledger schema",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{string(postgresadapter.MigrateUp), string(postgresadapter.MigrateDown), string(postgresadapter.MigrateVersion)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.Ledger.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate requires the postgres backend, got %q", cfg.Ledger.Backend)
			}
			pg, err := db.Connect(cfg.PostgresDSN, db.Options{Logger: bootstrap.NewLogger(cfg, "pollctl")})
			if err != nil {
				return err
			}
			defer pg.Close()

			sqlDB, err := pg.SQL()
			if err != nil {
				return err
			}
			status, err := postgresadapter.Migrate(sqlDB, postgresadapter.MigrateAction(args[0]), steps)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"version": status.Version,
				"dirty":   status.Dirty,
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to apply, 0 means all")
	return cmd
}
