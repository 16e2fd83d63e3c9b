package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	DefaultDismissAfter = 4 * time.Second
	MinDismissAfter     = 3 * time.Second
	MaxDismissAfter     = 5 * time.Second

	notificationQueueSize = 64
)

// NotificationSink 通知投递目标
type NotificationSink interface {
	Name() string
	Deliver(ctx context.Context, n model.Notification) error
}

// NotificationCenter Notifier 的实现：Notify 不阻塞、不 panic，
// 通知在 dismissAfter 后自动消失，投递由后台 goroutine 完成。
type NotificationCenter struct {
	clock Clock
	log   *zap.Logger
	sinks []NotificationSink

	queue  chan model.Notification
	nextID atomic.Uint64

	mu           sync.Mutex
	dismissAfter time.Duration
	active       map[uint64]model.Notification
	timers       map[uint64]Timer

	wg sync.WaitGroup
}

func NewNotificationCenter(clock Clock, dismissAfter time.Duration, log *zap.Logger, sinks ...NotificationSink) *NotificationCenter {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if dismissAfter < MinDismissAfter || dismissAfter > MaxDismissAfter {
		dismissAfter = DefaultDismissAfter
	}
	return &NotificationCenter{
		clock:        clock,
		log:          log,
		sinks:        sinks,
		queue:        make(chan model.Notification, notificationQueueSize),
		dismissAfter: dismissAfter,
		active:       make(map[uint64]model.Notification),
		timers:       make(map[uint64]Timer),
	}
}

func (c *NotificationCenter) Notify(kind model.NotificationKind, payload model.NotificationPayload) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("notify panicked", zap.Any("panic", r))
		}
	}()

	now := c.clock.Now()
	id := c.nextID.Add(1)

	c.mu.Lock()
	n := model.Notification{
		ID:        id,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(c.dismissAfter),
	}
	c.active[id] = n
	c.timers[id] = c.clock.AfterFunc(c.dismissAfter, func() { c.Dismiss(id) })
	c.mu.Unlock()

	select {
	case c.queue <- n:
	default:
		monitoring.NotificationsDropped.Inc()
		c.log.Warn("notification queue full, dropping delivery",
			zap.String("kind", string(kind)), zap.Uint64("id", id))
	}
}

// Dismiss 提前关闭通知；已关闭时为空操作
func (c *NotificationCenter) Dismiss(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	delete(c.active, id)
}

// Active 尚未消失的通知，按创建顺序
func (c *NotificationCenter) Active() []model.Notification {
	c.mu.Lock()
	out := make([]model.Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetDismissAfter 只影响之后的通知
func (c *NotificationCenter) SetDismissAfter(d time.Duration) error {
	if d < MinDismissAfter || d > MaxDismissAfter {
		return fmt.Errorf("dismiss interval %s outside [%s, %s]", d, MinDismissAfter, MaxDismissAfter)
	}
	c.mu.Lock()
	c.dismissAfter = d
	c.mu.Unlock()
	c.log.Info("notification dismiss interval updated", zap.Duration("dismiss_after", d))
	return nil
}

func (c *NotificationCenter) DismissAfter() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dismissAfter
}

// Start 启动后台投递，直到 ctx 结束；结束前尽量清空队列
func (c *NotificationCenter) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

func (c *NotificationCenter) run(ctx context.Context) {
	for {
		select {
		case n := <-c.queue:
			c.deliver(ctx, n)
		case <-ctx.Done():
			for {
				select {
				case n := <-c.queue:
					c.deliver(context.Background(), n)
				default:
					return
				}
			}
		}
	}
}

// Close 停止所有自动消失定时器并等待投递结束，需先取消 Start 的 ctx
func (c *NotificationCenter) Close() {
	c.mu.Lock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *NotificationCenter) deliver(ctx context.Context, n model.Notification) {
	for _, sink := range c.sinks {
		c.deliverTo(ctx, sink, n)
	}
}

func (c *NotificationCenter) deliverTo(ctx context.Context, sink NotificationSink, n model.Notification) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("notification sink panicked", zap.String("sink", sink.Name()), zap.Any("panic", r))
		}
	}()

	if err := sink.Deliver(ctx, n); err != nil {
		c.log.Warn("notification delivery failed",
			zap.String("sink", sink.Name()),
			zap.Uint64("id", n.ID),
			zap.Error(err))
	}
}

// LogSink 将通知写入日志
type LogSink struct {
	Log *zap.Logger
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Deliver(_ context.Context, n model.Notification) error {
	s.Log.Info("notification",
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Payload.Title),
		zap.String("message", n.Payload.Message),
		zap.String("target_id", n.Payload.TargetID))
	return nil
}
