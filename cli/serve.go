package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flowboard/flowboard/engine/automation"
	"github.com/flowboard/flowboard/engine/infra/postgres"
	"github.com/flowboard/flowboard/engine/infra/server"
	"github.com/flowboard/flowboard/engine/infra/store"
	"github.com/flowboard/flowboard/engine/notify"
	"github.com/flowboard/flowboard/engine/schedule"
	"github.com/flowboard/flowboard/pkg/config"
	"github.com/flowboard/flowboard/pkg/logger"
)

const defaultEnvFile = ".env"

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Flowboard API server",
		RunE:  handleServeCmd,
	}
	cmd.Flags().String("env-file", defaultEnvFile, "Path to the environment variables file")
	cmd.Flags().Bool("debug", false, "Enable debug mode (sets log level to debug)")
	return cmd
}

func handleServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := setupEnvironment(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(ctx)

	pg, err := newPostgresStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer pg.Close(ctx)
	if cfg.Database.AutoMigrate {
		if err := postgres.ApplyMigrations(ctx, dbDSN(cfg)); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
	}

	workflows := store.NewWorkflows(pg.Pool())
	tasks := store.NewTaskRepo(pg.Pool())
	rules := store.NewRuleRepo(pg.Pool())
	executions := store.NewExecutionRepo(pg.Pool())
	channels := store.NewChannelRepo(pg.Pool())

	notifier := notify.NewSlackDispatcher(channels,
		notify.WithRequestTimeout(cfg.Slack.RequestTimeout),
		notify.WithMaxRetries(cfg.Slack.MaxRetries),
	)
	engine := automation.NewEngine(workflows, notifier)

	if cfg.Schedule.Enabled {
		scanner := schedule.NewScanner(tasks, engine,
			schedule.WithCronSpec(cfg.Schedule.CronSpec))
		if err := scanner.Start(ctx); err != nil {
			return fmt.Errorf("starting due-date scanner: %w", err)
		}
		defer scanner.Stop()
	}

	srv := server.NewServer(&cfg.Server, cfg.Runtime.Env, &server.Deps{
		Tasks:      tasks,
		Rules:      rules,
		Executions: executions,
		Channels:   channels,
		Engine:     engine,
		Store:      pg,
	})
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// setupEnvironment loads the env file, builds the logger, and loads config.
func setupEnvironment(cmd *cobra.Command) (context.Context, *config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, nil, fmt.Errorf("reading env-file flag: %w", err)
	}
	if _, statErr := os.Stat(envFile); statErr == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Runtime.LogLevel = "debug"
	}
	log := logger.SetupLogger(cfg.Runtime.LogLevel, cfg.Runtime.LogJSON, cfg.Runtime.LogSource)
	ctx := logger.ContextWithLogger(context.Background(), log)
	return ctx, cfg, nil
}

func newPostgresStore(ctx context.Context, cfg *config.Config) (*postgres.Store, error) {
	pg, err := postgres.NewStore(ctx, &postgres.Config{
		ConnString: cfg.Database.ConnString,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
		MaxConns:   cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return pg, nil
}

func dbDSN(cfg *config.Config) string {
	pgCfg := postgres.Config{
		ConnString: cfg.Database.ConnString,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		DBName:     cfg.Database.DBName,
		SSLMode:    cfg.Database.SSLMode,
	}
	return pgCfg.DSN()
}
