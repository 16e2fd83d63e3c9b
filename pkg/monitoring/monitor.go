package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	GoalsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_goals_completed_total",
			Help: "Goals that transitioned from active to completed",
		},
	)

	AchievementsUnlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_achievements_unlocked_total",
			Help: "Achievements unlocked",
		},
	)

	GoalResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_goal_resets_total",
			Help: "Goals whose progress was reset at a cadence boundary",
		},
		[]string{"cadence"},
	)

	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_persistence_failures_total",
			Help: "Failed persistence calls by key and leg (remote/local)",
		},
		[]string{"key", "leg"},
	)

	NotificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_notifications_dropped_total",
			Help: "Notifications dropped because the queue was full",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(GoalsCompleted)
		prometheus.MustRegister(AchievementsUnlocked)
		prometheus.MustRegister(GoalResets)
		prometheus.MustRegister(PersistenceFailures)
		prometheus.MustRegister(NotificationsDropped)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// NewServer 独立的 /metrics 监听，供不提供 HTTP API 的跟踪进程使用
func NewServer(addr string) *http.Server {
	router := gin.New()
	router.GET("/metrics", PrometheusHandler())
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
