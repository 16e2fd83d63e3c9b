package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 本地缓存驱动
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheMinio  = "minio"
)

// 本地缓存键，与浏览器端 localStorage 键保持一致
const (
	CacheKeyGoals        = "goals"
	CacheKeyAchievements = "achievements"
)

// 后端路径
const (
	PathGoals        = "/goals"
	PathAchievements = "/api/achievements"
)

// NATS 主题
const (
	SubjectGoalProgress        = "lingua.progress.goal"
	SubjectAchievementProgress = "lingua.progress.achievement"
	SubjectActivity            = "lingua.progress.activity"
	SubjectNotifyPrefix        = "lingua.notify."
)
