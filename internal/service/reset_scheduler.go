package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lingua_edu_backend/internal/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CadenceResetter 由 GoalService 实现
type CadenceResetter interface {
	ResetCadence(ctx context.Context, cadence model.GoalType) (int, error)
}

var periodicCadences = []model.GoalType{model.GoalDaily, model.GoalWeekly, model.GoalMonthly}

// 每日零点、每周日零点、每月1日零点
var cadenceSchedules = map[model.GoalType]cron.Schedule{
	model.GoalDaily:   mustSchedule("0 0 * * *"),
	model.GoalWeekly:  mustSchedule("0 0 * * 0"),
	model.GoalMonthly: mustSchedule("0 0 1 * *"),
}

func mustSchedule(spec string) cron.Schedule {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		panic(fmt.Sprintf("invalid reset schedule %q: %v", spec, err))
	}
	return schedule
}

// NextBoundary 返回 now 之后（严格大于）的下一个重置时刻，按 now 所在时区计算。
// 非周期类型返回零值。
func NextBoundary(cadence model.GoalType, now time.Time) time.Time {
	schedule, ok := cadenceSchedules[cadence]
	if !ok {
		return time.Time{}
	}
	return schedule.Next(now)
}

// ResetScheduler 为每个周期类型维护一个一次性定时器，触发后按日历重新计算下一次
type ResetScheduler struct {
	goals CadenceResetter
	clock Clock
	log   *zap.Logger

	mu         sync.Mutex
	ctx        context.Context
	running    bool
	generation uint64
	done       chan struct{}
	timers     map[model.GoalType]Timer
	next       map[model.GoalType]time.Time

	watchers sync.WaitGroup
}

func NewResetScheduler(goals CadenceResetter, clock Clock, log *zap.Logger) *ResetScheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ResetScheduler{
		goals:  goals,
		clock:  clock,
		log:    log,
		timers: make(map[model.GoalType]Timer),
		next:   make(map[model.GoalType]time.Time),
	}
}

// Start 重复调用无效；ctx 结束时自动 Stop
func (s *ResetScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.generation++
	s.ctx = ctx
	s.done = make(chan struct{})
	now := s.clock.Now()
	for _, cadence := range periodicCadences {
		s.armLocked(cadence, now)
	}
	gen := s.generation
	done := s.done
	s.mu.Unlock()

	s.watchers.Add(1)
	go func() {
		defer s.watchers.Done()
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		s.mu.Lock()
		current := s.running && s.generation == gen
		s.mu.Unlock()
		if current {
			s.Stop()
		}
	}()

	s.log.Info("reset scheduler started")
}

// Stop 取消所有未触发的定时器，可重复调用
func (s *ResetScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.generation++
	close(s.done)
	for cadence, t := range s.timers {
		t.Stop()
		delete(s.timers, cadence)
		delete(s.next, cadence)
	}
	s.log.Info("reset scheduler stopped")
}

// Fire 立即执行一次重置，不影响已安排的定时器
func (s *ResetScheduler) Fire(ctx context.Context, cadence model.GoalType) (int, error) {
	return s.goals.ResetCadence(ctx, cadence)
}

// Next 返回各周期下一次触发时间
func (s *ResetScheduler) Next() map[model.GoalType]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[model.GoalType]time.Time, len(s.next))
	for k, v := range s.next {
		out[k] = v
	}
	return out
}

func (s *ResetScheduler) armLocked(cadence model.GoalType, from time.Time) {
	at := NextBoundary(cadence, from)
	gen := s.generation
	s.next[cadence] = at
	s.timers[cadence] = s.clock.AfterFunc(at.Sub(s.clock.Now()), func() {
		s.fire(cadence, at, gen)
	})
	s.log.Debug("reset armed", zap.String("cadence", string(cadence)), zap.Time("at", at))
}

func (s *ResetScheduler) fire(cadence model.GoalType, boundary time.Time, gen uint64) {
	s.mu.Lock()
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	if _, err := s.goals.ResetCadence(ctx, cadence); err != nil {
		s.log.Error("scheduled reset failed", zap.String("cadence", string(cadence)), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.generation != gen {
		return
	}

	// 定时器提前触发时仍以本次边界为起点，避免同一边界重复重置
	from := s.clock.Now()
	if from.Before(boundary) {
		from = boundary
	}
	s.armLocked(cadence, from)
}
