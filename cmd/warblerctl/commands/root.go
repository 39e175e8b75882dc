package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"warbler/internal/app"
	"warbler/internal/bootstrap"
	"warbler/internal/config"
	"warbler/internal/logger"
	"warbler/internal/platform/database"
	"warbler/internal/repository"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "warblerctl",
	Short: "Administration tool for the Warbler database",
	Long: `warblerctl migrates, seeds and benchmarks a Warbler database.

It reads the same configuration as the server (TOML file, .env, environment)
but only needs the database; Redis and RabbitMQ are not contacted.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (defaults to CONFIG_FILE or configs/config.toml)")
	rootCmd.AddCommand(newMigrateCmd(), newSeedCmd(), newBenchFeedCmd())
}

// runtime holds the database-only resources a command needs.
type runtime struct {
	cfg   *config.Config
	log   *logrus.Logger
	db    *gorm.DB
	store *repository.Store
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)

	db, err := bootstrap.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, db: db, store: repository.NewStore(db)}, nil
}

func (r *runtime) services(bcryptCost int) *app.Services {
	auth := bootstrap.AuthConfig(r.cfg)
	if bcryptCost > 0 {
		auth.BcryptCost = bcryptCost
	}
	return app.NewServices(r.store, auth, nil, nil, r.log)
}

func (r *runtime) Close() error {
	return database.Close(r.db)
}
