package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type GoalReporter interface {
	ReportProgress(ctx context.Context, category model.GoalCategory, amount int) ([]model.Goal, error)
}

type AchievementUpdater interface {
	UpdateProgress(ctx context.Context, id string, progress int)
	CheckAndUpdateProgress(ctx context.Context, activityType string, value int) ([]model.Achievement, error)
}

// Dispatcher 将进度事件解码后路由到目标与成就存储
type Dispatcher struct {
	Goals        GoalReporter
	Achievements AchievementUpdater
	Log          *zap.Logger
}

func (d *Dispatcher) Dispatch(ctx context.Context, subject string, data []byte) error {
	switch subject {
	case util.SubjectGoalProgress:
		var ev model.GoalProgressEvent
		if err := decode(data, &ev); err != nil {
			return err
		}
		touched, err := d.Goals.ReportProgress(ctx, ev.Category, ev.Amount)
		if err != nil {
			return err
		}
		d.Log.Debug("goal progress applied",
			zap.String("category", string(ev.Category)),
			zap.Int("amount", ev.Amount),
			zap.Int("touched", len(touched)))

	case util.SubjectAchievementProgress:
		var ev model.AchievementProgressEvent
		if err := decode(data, &ev); err != nil {
			return err
		}
		if strings.TrimSpace(ev.ID) == "" {
			return util.NewValidationError("id", "must not be empty")
		}
		d.Achievements.UpdateProgress(ctx, ev.ID, ev.Progress)

	case util.SubjectActivity:
		var ev model.ActivityEvent
		if err := decode(data, &ev); err != nil {
			return err
		}
		unlocked, err := d.Achievements.CheckAndUpdateProgress(ctx, ev.ActivityType, ev.Value)
		if err != nil {
			return err
		}
		d.Log.Debug("activity evaluated",
			zap.String("activity_type", ev.ActivityType),
			zap.Int("unlocked", len(unlocked)))

	default:
		return fmt.Errorf("unexpected subject %q", subject)
	}
	return nil
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// Consumer 订阅 lingua.progress.* 并交给 Dispatcher 处理
type Consumer struct {
	conn       *nats.Conn
	dispatcher *Dispatcher
	log        *zap.Logger
	subs       []*nats.Subscription
}

func NewConsumer(conn *nats.Conn, dispatcher *Dispatcher, log *zap.Logger) *Consumer {
	return &Consumer{conn: conn, dispatcher: dispatcher, log: log}
}

func (c *Consumer) Start(ctx context.Context) error {
	subjects := []string{util.SubjectGoalProgress, util.SubjectAchievementProgress, util.SubjectActivity}
	for _, subject := range subjects {
		sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
			if err := c.dispatcher.Dispatch(ctx, msg.Subject, msg.Data); err != nil {
				c.log.Warn("dropping progress event", zap.String("subject", msg.Subject), zap.Error(err))
			}
		})
		if err != nil {
			c.Stop()
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		c.subs = append(c.subs, sub)
	}
	c.log.Info("progress consumer started", zap.Strings("subjects", subjects))
	return nil
}

func (c *Consumer) Stop() {
	for _, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			c.log.Debug("drain subscription failed", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	c.subs = nil
}
