package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/engine/infra/postgres"
)

// MigrateCmd returns the migrate command. It applies pending migrations and
// exits; the serve command also does this on boot when auto-migrate is on.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE:  handleMigrateCmd,
	}
	cmd.Flags().String("env-file", defaultEnvFile, "Path to the environment variables file")
	cmd.Flags().Bool("debug", false, "Enable debug mode (sets log level to debug)")
	return cmd
}

func handleMigrateCmd(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := setupEnvironment(cmd)
	if err != nil {
		return err
	}
	if err := postgres.ApplyMigrations(ctx, dbDSN(cfg)); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
