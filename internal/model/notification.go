package model

import "time"

type NotificationKind string

const (
	NotifyGoalCompleted       NotificationKind = "goalCompleted"
	NotifyAchievementUnlocked NotificationKind = "achievementUnlocked"
)

type NotificationPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	// TargetID 关联的目标或成就ID
	TargetID string `json:"targetId,omitempty"`
	Points   int    `json:"points,omitempty"`
}

type Notification struct {
	ID        uint64              `json:"id"`
	Kind      NotificationKind    `json:"kind"`
	Payload   NotificationPayload `json:"payload"`
	CreatedAt time.Time           `json:"createdAt"`
	ExpiresAt time.Time           `json:"expiresAt"`
}
