// @title Lingua 目标与成就 API
// @version 1.0
// @description 学习目标与成就跟踪的持久化后端。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"lingua_edu_backend/internal/app"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "lingua",
	Short:         "Goal and achievement tracker for the Lingua learning platform",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the persistence backend (/goals, /api/achievements)",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrateOnly, _ := cmd.Flags().GetBool("migrate-only")
		migrate, _ := cmd.Flags().GetBool("migrate")

		cfg, err := loadConfig("backend.log")
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		// 设置迁移标志
		cfg.ForceMigrate = migrate || migrateOnly
		cfg.MigrateOnly = migrateOnly

		application, err := app.NewApp(cfg)
		if err != nil {
			return err
		}

		// 迁移完成后直接退出
		if migrateOnly {
			logger.Log.Info("Database migration finished, exiting")
			application.Close(context.Background())
			return nil
		}

		return application.Run()
	},
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run a tracker session fed by progress events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("tracker.log")
		if err != nil {
			return err
		}
		defer logger.Log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tracker, err := app.NewTracker(ctx, cfg, configDir)
		if err != nil {
			return err
		}
		return tracker.Run(ctx)
	},
}

func loadConfig(logFile string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitLogger(cfg, filepath.Join("logs", logFile))
	logger.Log.Debug("Config loaded", zap.String("dir", configDir))
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "配置文件目录")

	serveCmd.Flags().Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	serveCmd.Flags().Bool("migrate-only", false, "只执行数据库迁移，完成后退出")

	rootCmd.AddCommand(serveCmd, trackCmd, goalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
