package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/events"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/configwatcher"
	"lingua_edu_backend/pkg/database"
	"lingua_edu_backend/pkg/logger"
	"lingua_edu_backend/pkg/messaging"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/tracing"

	"github.com/nats-io/nats.go"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Tracker 一次跟踪会话：目标/成就存储、周期重置、通知，以及 NATS 进度事件入口
type Tracker struct {
	Config        *config.Config
	ConfigDir     string
	Goals         *service.GoalService
	Achievements  *service.AchievementService
	Scheduler     *service.ResetScheduler
	Notifications *service.NotificationCenter

	cache          repository.LocalCache
	nats           *nats.Conn
	consumer       *events.Consumer
	tracerProvider *sdktrace.TracerProvider
	metrics        *http.Server
}

func newLocalCache(ctx context.Context, cfg *config.Config) (repository.LocalCache, error) {
	prefix := cfg.Tracker.CachePrefix
	switch cfg.Tracker.CacheDriver {
	case util.CacheRedis:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("initialize redis cache: %w", err)
		}
		return repository.NewRedisCache(rdb, prefix), nil
	case util.CacheMinio:
		client, err := database.InitMinio(&cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("initialize minio cache: %w", err)
		}
		return repository.NewMinioCache(ctx, client, cfg.Minio.Bucket, prefix)
	default:
		return repository.NewSQLiteCache(cfg.Tracker.CachePath)
	}
}

// NewTracker extraSinks 追加在日志与 NATS 之后
func NewTracker(ctx context.Context, cfg *config.Config, configDir string, extraSinks ...service.NotificationSink) (*Tracker, error) {
	loc, err := cfg.Tracker.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	clock := service.SystemClock{Location: loc}

	cache, err := newLocalCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	t := &Tracker{Config: cfg, ConfigDir: configDir, cache: cache}

	sinks := []service.NotificationSink{service.LogSink{Log: logger.Named("notification")}}
	if cfg.NATS.Enabled {
		conn, err := messaging.Connect(cfg)
		if err != nil {
			// 没有 NATS 时会话仍可在进程内使用
			logger.Log.Warn("NATS unavailable, progress events disabled", zap.Error(err))
		} else {
			t.nats = conn
			sinks = append(sinks, events.NATSSink{Pub: conn})
		}
	}

	sinks = append(sinks, extraSinks...)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("lingua-tracker", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			t.tracerProvider = tp
		}
	}

	monitoring.Init()

	remote := repository.NewRemoteClient(cfg.Tracker.RemoteURL, cfg.Tracker.Token, cfg.Tracker.RequestTimeout)
	goalStore := repository.NewDualStore[[]model.Goal](remote, cache, util.PathGoals, util.CacheKeyGoals, logger.Named("goals.store"))
	achievementStore := repository.NewDualStore[model.AchievementGroups](remote, cache, util.PathAchievements, util.CacheKeyAchievements, logger.Named("achievements.store"))

	t.Notifications = service.NewNotificationCenter(clock, cfg.Tracker.DismissAfter, logger.Named("notify"), sinks...)
	t.Goals = service.NewGoalService(goalStore, t.Notifications, clock, logger.Named("goals"))
	t.Achievements = service.NewAchievementService(achievementStore, t.Notifications, clock, logger.Named("achievements"))
	t.Scheduler = service.NewResetScheduler(t.Goals, clock, logger.Named("scheduler"))

	if t.nats != nil {
		dispatcher := &events.Dispatcher{
			Goals:        t.Goals,
			Achievements: t.Achievements,
			Log:          logger.Named("events"),
		}
		t.consumer = events.NewConsumer(t.nats, dispatcher, logger.Named("events"))
	}

	return t, nil
}

// Run 加载状态并启动各组件，阻塞到 ctx 结束后清理
func (t *Tracker) Run(ctx context.Context) error {
	if err := t.Goals.Load(ctx); err != nil {
		return err
	}
	groups := t.Achievements.GetAll(ctx)
	logger.Log.Info("Tracker session loaded",
		zap.Int("achievement_categories", len(groups)),
		zap.Bool("degraded", t.Achievements.Degraded()))

	t.Notifications.Start(ctx)
	t.Scheduler.Start(ctx)

	if t.consumer != nil {
		if err := t.consumer.Start(ctx); err != nil {
			logger.Log.Error("Failed to start progress consumer", zap.Error(err))
		}
	}

	if t.ConfigDir != "" {
		err := configwatcher.Watch(ctx, t.ConfigDir, configwatcher.DefaultDebounce, t.applyConfig)
		if err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	if addr := t.Config.Tracker.MetricsAddr; addr != "" {
		t.serveMetrics(addr)
	}

	for cadence, at := range t.Scheduler.Next() {
		logger.Log.Info("Next reset scheduled", zap.String("cadence", string(cadence)), zap.Time("at", at))
	}

	<-ctx.Done()
	logger.Log.Info("Shutting down tracker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t.Close(shutdownCtx)
	return nil
}

// RunOnce 供一次性命令使用：加载目标、启动通知投递后执行 fn，
// 返回前投递完排队的通知并关闭会话。
func (t *Tracker) RunOnce(fn func(ctx context.Context, t *Tracker) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	t.Notifications.Start(ctx)
	defer func() {
		cancel()
		t.Close(context.Background())
	}()

	if err := t.Goals.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, t)
}

func (t *Tracker) serveMetrics(addr string) {
	t.metrics = monitoring.NewServer(addr)
	go func() {
		logger.Log.Info("Metrics listening", zap.String("addr", addr))
		if err := t.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Metrics server failed", zap.Error(err))
		}
	}()
}

func (t *Tracker) applyConfig(cfg *config.Config) {
	if err := t.Notifications.SetDismissAfter(cfg.Tracker.DismissAfter); err != nil {
		logger.Log.Warn("Ignoring dismiss interval from reloaded config", zap.Error(err))
	}
}

func (t *Tracker) Close(ctx context.Context) {
	if t.metrics != nil {
		if err := t.metrics.Shutdown(ctx); err != nil {
			logger.Log.Warn("Failed to shutdown metrics server", zap.Error(err))
		}
	}
	t.Scheduler.Stop()
	if t.consumer != nil {
		t.consumer.Stop()
	}
	t.Notifications.Close()
	if t.nats != nil {
		if err := t.nats.Drain(); err != nil {
			logger.Log.Warn("NATS drain failed", zap.Error(err))
		}
	}
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if err := t.cache.Close(); err != nil {
		logger.Log.Warn("Failed to close local cache", zap.Error(err))
	}
}
