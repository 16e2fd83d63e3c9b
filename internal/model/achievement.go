package model

import "time"

type CriterionType string

const (
	CriterionThreshold CriterionType = "threshold"
	CriterionCount     CriterionType = "count"
	CriterionStreak    CriterionType = "streak"
)

// Achievement 成就定义及其进度。
// Unlocked/UnlockedAt 为权威状态，Progress >= Target 只用于触发解锁。
type Achievement struct {
	UserID         uint          `gorm:"primaryKey;autoIncrement:false;type:bigint unsigned" json:"-"`
	ID             string        `gorm:"primaryKey;size:64" json:"id"`
	Category       string        `gorm:"size:32;index" json:"category"`
	Name           string        `gorm:"size:100;not null" json:"name"`
	Description    string        `gorm:"size:255" json:"description,omitempty"`
	Icon           string        `gorm:"size:255" json:"icon,omitempty"`
	Progress       int           `gorm:"default:0" json:"progress"`
	Target         int           `gorm:"not null" json:"target"`
	Points         int           `gorm:"default:0" json:"points"`
	Unlocked       bool          `gorm:"default:false;index" json:"unlocked"`
	UnlockedAt     *time.Time    `json:"unlockedAt,omitempty"`
	ActivityType   string        `gorm:"size:64;index" json:"activityType,omitempty"`
	Criterion      CriterionType `gorm:"size:16" json:"criterion,omitempty"`
	Threshold      int           `json:"threshold,omitempty"`
	RequiredCount  int           `json:"requiredCount,omitempty"`
	RequiredStreak int           `json:"requiredStreak,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (a *Achievement) IsUnlocked() bool {
	return a.Unlocked
}

// Qualifies 按成就的判定方式评估活动数值
func (a *Achievement) Qualifies(value int) bool {
	switch a.Criterion {
	case CriterionThreshold:
		return value >= a.Threshold
	case CriterionCount:
		return value >= a.RequiredCount
	case CriterionStreak:
		return value >= a.RequiredStreak
	}
	return false
}

// MarkUnlocked 幂等；返回是否为首次解锁
func (a *Achievement) MarkUnlocked(at time.Time) bool {
	if a.Unlocked {
		return false
	}
	a.Unlocked = true
	a.UnlockedAt = &at
	return true
}

func (a Achievement) Clone() Achievement {
	if a.UnlockedAt != nil {
		t := *a.UnlockedAt
		a.UnlockedAt = &t
	}
	return a
}

// AchievementGroups 分类 -> 成就列表
type AchievementGroups map[string][]Achievement

func (g AchievementGroups) Clone() AchievementGroups {
	out := make(AchievementGroups, len(g))
	for category, list := range g {
		copied := make([]Achievement, len(list))
		for i := range list {
			copied[i] = list[i].Clone()
		}
		out[category] = copied
	}
	return out
}

// Flatten 按分类展开，用于服务端落库
func (g AchievementGroups) Flatten() []Achievement {
	var out []Achievement
	for category, list := range g {
		for _, a := range list {
			if a.Category == "" {
				a.Category = category
			}
			out = append(out, a)
		}
	}
	return out
}

// GroupAchievements 按 Category 分组
func GroupAchievements(list []Achievement) AchievementGroups {
	groups := make(AchievementGroups)
	for _, a := range list {
		groups[a.Category] = append(groups[a.Category], a)
	}
	return groups
}
