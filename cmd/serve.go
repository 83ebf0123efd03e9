package cmd

import (
	"context"

	"portfolio-server/db"
	"portfolio-server/setup"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the http server",
	Run:   serve,
}

func serve(cmd *cobra.Command, args []string) {
	cfg := setup.MustLoadConfig(configPath)
	if Version != "development" {
		cfg.Version = Version
	}

	logger := setup.MustInitLogging(cfg)
	defer logger.Sync()

	setup.MustLoadIp(cfg)

	// read paths have fallbacks, so a missing database degrades the site instead of
	// taking it down
	if err := setup.InitDb(cfg); err != nil {
		if cfg.IsProduction() {
			zap.L().Fatal("Error initializing database", zap.Error(err))
		}
		zap.L().Error("Error initializing database, serving without it", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()

	services, err := setup.NewServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Error initializing services", zap.Error(err))
	}
	services.RegisterHooks()

	if err := services.StartServer(ctx); err != nil {
		zap.L().Fatal("Server error", zap.Error(err))
	}
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
