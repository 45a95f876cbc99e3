package cli

import (
	"github.com/spf13/cobra"

	"github.com/sqing33/stickyboard/pkg/config"
	"github.com/sqing33/stickyboard/pkg/store"
)

// migrateCommand creates the "migrate" command applying the note schema.
func (c *CLI) migrateCommand() *cobra.Command {
	var (
		configFile string
		dbURL      string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Bring the notes schema up to date. Safe to run repeatedly; an already-current schema is a no-op. The serve command migrates on startup, so this is mainly for pipelines that migrate before deploying.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = configPath()
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("database-url") {
				cfg.DatabaseURL = dbURL
			}
			if cfg.DatabaseURL == "" {
				printWarning("No database configured, nothing to migrate")
				return nil
			}

			p := newProgress(c.Logger)
			if err := store.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			p.done("Migrations applied")
			printSuccess("Schema is up to date")
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file (default ~/.config/stickyboard/config.toml)")
	cmd.Flags().StringVar(&dbURL, "database-url", "", "Postgres connection URL")

	return cmd
}
