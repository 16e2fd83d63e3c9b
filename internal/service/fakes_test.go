package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lingua_edu_backend/internal/model"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance 按到期顺序依次触发定时器，触发时 Now 等于其到期时间
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type sentNotification struct {
	Kind    model.NotificationKind
	Payload model.NotificationPayload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(kind model.NotificationKind, payload model.NotificationPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{Kind: kind, Payload: payload})
}

func (r *recordingNotifier) count(kind model.NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type memGoalStore struct {
	mu       sync.Mutex
	goals    []model.Goal
	found    bool
	saves    int
	failLoad bool
	failSave bool
}

func (m *memGoalStore) Load(context.Context) ([]model.Goal, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, false, errors.New("both legs down")
	}
	out := make([]model.Goal, len(m.goals))
	copy(out, m.goals)
	return out, m.found, nil
}

func (m *memGoalStore) Save(_ context.Context, goals []model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failSave {
		return errors.New("both legs down")
	}
	m.goals = goals
	m.found = true
	return nil
}

func (m *memGoalStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type memAchievementStore struct {
	mu       sync.Mutex
	groups   model.AchievementGroups
	saves    int
	failLoad bool
}

func (m *memAchievementStore) Load(context.Context) (model.AchievementGroups, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, false, errors.New("backend down")
	}
	if m.groups == nil {
		return nil, false, nil
	}
	return m.groups.Clone(), true, nil
}

func (m *memAchievementStore) Save(_ context.Context, groups model.AchievementGroups) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.groups = groups
	return nil
}

func (m *memAchievementStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
