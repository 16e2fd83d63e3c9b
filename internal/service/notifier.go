package service

import "lingua_edu_backend/internal/model"

// Notifier 通知出口；调用不得阻塞，也不得 panic
type Notifier interface {
	Notify(kind model.NotificationKind, payload model.NotificationPayload)
}

type NopNotifier struct{}

func (NopNotifier) Notify(model.NotificationKind, model.NotificationPayload) {}
