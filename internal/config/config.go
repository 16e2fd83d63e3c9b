package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Minio     MinioConfig
	NATS      NATSConfig      `mapstructure:"nats"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"ssl_mode"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Name    string `mapstructure:"name"`
	Enabled bool   `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// TrackerConfig 目标/成就跟踪会话配置
type TrackerConfig struct {
	RemoteURL      string        `mapstructure:"remote_url"`
	Token          string        `mapstructure:"token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheDriver    string        `mapstructure:"cache_driver"`
	CachePath      string        `mapstructure:"cache_path"`
	CachePrefix    string        `mapstructure:"cache_prefix"`
	DismissAfter   time.Duration `mapstructure:"dismiss_after"`
	Timezone       string        `mapstructure:"timezone"`
	MetricsAddr    string        `mapstructure:"metrics_addr"` // 为空时 track 不暴露 /metrics
}

const (
	minDismissAfter = 3 * time.Second
	maxDismissAfter = 5 * time.Second
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.name", "lingua-tracker")
	v.SetDefault("rate_limit.max_requests", 100000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("tracker.remote_url", "http://127.0.0.1:8080")
	v.SetDefault("tracker.request_timeout", "10s")
	v.SetDefault("tracker.cache_driver", "sqlite")
	v.SetDefault("tracker.cache_path", "data/tracker-cache.db")
	v.SetDefault("tracker.cache_prefix", "tracker")
	v.SetDefault("tracker.dismiss_after", "4s")
	v.SetDefault("tracker.timezone", "Local")
}

func LoadConfig(path string) (*Config, error) {
	// .env 可选，存在时先载入环境变量
	_ = godotenv.Load(filepath.Join(path, "..", ".env"))

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LINGUA")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Minio
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")

	// NATS
	v.BindEnv("nats.url", "NATS_URL")
	v.BindEnv("nats.enabled", "NATS_ENABLED")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Tracker
	v.BindEnv("tracker.remote_url", "TRACKER_REMOTE_URL")
	v.BindEnv("tracker.token", "TRACKER_TOKEN")
	v.BindEnv("tracker.cache_driver", "TRACKER_CACHE_DRIVER")
	v.BindEnv("tracker.cache_path", "TRACKER_CACHE_PATH")
	v.BindEnv("tracker.metrics_addr", "TRACKER_METRICS_ADDR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Tracker.CacheDriver == "sqlite" {
		if dir := filepath.Dir(cfg.Tracker.CachePath); dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				os.MkdirAll(dir, 0755)
			}
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Tracker.CacheDriver {
	case "sqlite", "redis", "minio":
	default:
		return fmt.Errorf("unsupported tracker cache driver %q", c.Tracker.CacheDriver)
	}

	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowMinutes <= 0 {
		return fmt.Errorf("rate_limit.max_requests and rate_limit.window_minutes must be positive, got %d and %d",
			c.RateLimit.MaxRequests, c.RateLimit.WindowMinutes)
	}

	if c.Tracker.DismissAfter < minDismissAfter || c.Tracker.DismissAfter > maxDismissAfter {
		return fmt.Errorf("tracker.dismiss_after must be between %s and %s, got %s", minDismissAfter, maxDismissAfter, c.Tracker.DismissAfter)
	}

	return nil
}

// Location 重置边界使用的本地时区
func (c *TrackerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
