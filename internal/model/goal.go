package model

import "time"

type GoalType string

const (
	GoalDaily   GoalType = "daily"
	GoalWeekly  GoalType = "weekly"
	GoalMonthly GoalType = "monthly"
	GoalCustom  GoalType = "custom"
)

// Valid 是否为已知的目标类型
func (t GoalType) Valid() bool {
	switch t {
	case GoalDaily, GoalWeekly, GoalMonthly, GoalCustom:
		return true
	}
	return false
}

// Periodic custom 类型不参与周期重置
func (t GoalType) Periodic() bool {
	return t == GoalDaily || t == GoalWeekly || t == GoalMonthly
}

type GoalCategory string

const (
	CategoryVocabulary GoalCategory = "vocabulary"
	CategoryLessons    GoalCategory = "lessons"
	CategoryPractice   GoalCategory = "practice"
	CategoryGames      GoalCategory = "games"
	CategoryPoints     GoalCategory = "points"
)

func (c GoalCategory) Valid() bool {
	switch c {
	case CategoryVocabulary, CategoryLessons, CategoryPractice, CategoryGames, CategoryPoints:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

type GoalFilter string

const (
	GoalFilterAll       GoalFilter = "all"
	GoalFilterActive    GoalFilter = "active"
	GoalFilterCompleted GoalFilter = "completed"
)

// Goal 学习目标，progress 始终位于 [0, target]。
// 服务端以 (user_id, id) 为主键，不同用户可以持有相同 id。
type Goal struct {
	UserID      uint         `gorm:"primaryKey;autoIncrement:false;type:bigint unsigned" json:"-"`
	ID          string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string       `gorm:"size:255" json:"title,omitempty"`
	Type        GoalType     `gorm:"size:16;not null" json:"type"`
	Category    GoalCategory `gorm:"size:32;index;not null" json:"category"`
	Target      int          `gorm:"not null" json:"target"`
	Progress    int          `gorm:"default:0" json:"progress"`
	Status      GoalStatus   `gorm:"size:16;default:'active'" json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

func (Goal) TableName() string {
	return "goals"
}

func (g *Goal) IsActive() bool {
	return g.Status == GoalActive
}

// Clone 返回不共享指针字段的副本
func (g Goal) Clone() Goal {
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		g.CompletedAt = &t
	}
	return g
}
