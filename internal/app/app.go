package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/controller"
	"lingua_edu_backend/internal/events"
	"lingua_edu_backend/internal/middleware"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/pkg/database"
	"lingua_edu_backend/pkg/logger"
	"lingua_edu_backend/pkg/messaging"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/security"
	"lingua_edu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 持久化后端：为跟踪会话提供 /goals 与 /api/achievements
type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB

	nats           *nats.Conn
	notifier       *service.NotificationCenter
	limiter        *security.RateLimiter
	tracerProvider *sdktrace.TracerProvider
}

type repositories struct {
	goal        *repository.GoalRepository
	achievement *repository.AchievementRepository
}

type services struct {
	sync *service.SyncService
}

type controllers struct {
	goal        *controller.GoalController
	achievement *controller.AchievementController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		goal:        repository.NewGoalRepository(db),
		achievement: repository.NewAchievementRepository(db),
	}
}

func (a *App) initServices(repos *repositories) *services {
	var notifier service.Notifier = service.NopNotifier{}
	if a.notifier != nil {
		notifier = a.notifier
	}
	return &services{
		sync: service.NewSyncService(repos.goal, repos.achievement, notifier, logger.Named("sync")),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		goal:        controller.NewGoalController(s.sync),
		achievement: controller.NewAchievementController(s.sync),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) error {
	limiter, err := security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	if err != nil {
		return err
	}
	a.limiter = limiter

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	return nil
}

// initNotifications 服务端判定的解锁通过 NATS 广播，未启用 NATS 时不发送
func (a *App) initNotifications(cfg *config.Config) {
	if !cfg.NATS.Enabled {
		return
	}
	conn, err := messaging.Connect(cfg)
	if err != nil {
		logger.Log.Warn("NATS unavailable, unlock notifications disabled", zap.Error(err))
		return
	}
	a.nats = conn
	a.notifier = service.NewNotificationCenter(service.SystemClock{}, cfg.Tracker.DismissAfter,
		logger.Named("notify"), events.NATSSink{Pub: conn})
}

func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	app.initNotifications(cfg)

	repos := app.initRepositories(db)
	services := app.initServices(repos)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	app.Router = router

	if err := app.setupMiddlewares(router, cfg); err != nil {
		return nil, fmt.Errorf("setup middlewares: %w", err)
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lingua-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.notifier != nil {
		a.notifier.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
	return nil
}

// Close 释放外部连接
func (a *App) Close(ctx context.Context) {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.nats != nil {
		if err := a.nats.Drain(); err != nil {
			logger.Log.Warn("NATS drain failed", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
