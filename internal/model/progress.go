package model

// GoalProgressEvent 来自游戏/课程等模块的目标进度信号
type GoalProgressEvent struct {
	Category GoalCategory `json:"category"`
	Amount   int          `json:"amount"`
}

type AchievementProgressEvent struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
}

type ActivityEvent struct {
	ActivityType string `json:"activityType" binding:"required"`
	Value        int    `json:"value"`
}
