package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"lingua_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNextBoundary(t *testing.T) {
	utc := time.UTC
	at := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, utc)
	}

	tests := []struct {
		name    string
		cadence model.GoalType
		now     time.Time
		want    time.Time
	}{
		{"daily mid-day", model.GoalDaily, at(2024, time.March, 13, 9, 30), at(2024, time.March, 14, 0, 0)},
		{"daily at midnight", model.GoalDaily, at(2024, time.March, 14, 0, 0), at(2024, time.March, 15, 0, 0)},
		{"daily year end", model.GoalDaily, at(2023, time.December, 31, 23, 59), at(2024, time.January, 1, 0, 0)},
		{"weekly from wednesday", model.GoalWeekly, at(2024, time.March, 13, 9, 30), at(2024, time.March, 17, 0, 0)},
		{"weekly from saturday night", model.GoalWeekly, at(2024, time.March, 16, 23, 59), at(2024, time.March, 17, 0, 0)},
		{"weekly from sunday midnight", model.GoalWeekly, at(2024, time.March, 17, 0, 0), at(2024, time.March, 24, 0, 0)},
		{"weekly from sunday noon", model.GoalWeekly, at(2024, time.March, 17, 12, 0), at(2024, time.March, 24, 0, 0)},
		// Jan 31 到 Mar 1 经过两次边界：先 Feb 1，在 Feb 1 触发后才是 Mar 1
		{"monthly from jan 31", model.GoalMonthly, at(2023, time.January, 31, 10, 0), at(2023, time.February, 1, 0, 0)},
		{"monthly from feb 1", model.GoalMonthly, at(2023, time.February, 1, 0, 0), at(2023, time.March, 1, 0, 0)},
		{"monthly leap feb", model.GoalMonthly, at(2024, time.February, 29, 8, 0), at(2024, time.March, 1, 0, 0)},
		{"monthly december", model.GoalMonthly, at(2023, time.December, 15, 8, 0), at(2024, time.January, 1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBoundary(tt.cadence, tt.now)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.now))
		})
	}
}

func TestNextBoundary_CustomNeverResets(t *testing.T) {
	assert.True(t, NextBoundary(model.GoalCustom, testStart).IsZero())
}

func TestNextBoundary_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 2024-03-10 02:00 夏令时开始，当天只有 23 小时
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, loc)

	got := NextBoundary(model.GoalDaily, now)

	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, loc), got)
	assert.Equal(t, 12*time.Hour, got.Sub(now))
}

func TestNextBoundary_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2024, time.March, 13, 23, 0, 0, 0, loc)

	got := NextBoundary(model.GoalDaily, now)

	assert.Equal(t, time.Date(2024, time.March, 14, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

type resetCall struct {
	cadence model.GoalType
	at      time.Time
}

type recordingResetter struct {
	mu    sync.Mutex
	clock Clock
	calls []resetCall
}

func (r *recordingResetter) ResetCadence(_ context.Context, cadence model.GoalType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, resetCall{cadence: cadence, at: r.clock.Now()})
	return 0, nil
}

func (r *recordingResetter) times(cadence model.GoalType) []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Time
	for _, c := range r.calls {
		if c.cadence == cadence {
			out = append(out, c.at)
		}
	}
	return out
}

func TestResetScheduler_MonthlyFollowsCalendar(t *testing.T) {
	clock := newFakeClock(time.Date(2023, time.January, 31, 10, 0, 0, 0, time.UTC))
	resetter := &recordingResetter{clock: clock}
	s := NewResetScheduler(resetter, clock, zap.NewNop())

	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), s.Next()[model.GoalMonthly])

	clock.Advance(62 * 24 * time.Hour)

	assert.Equal(t, []time.Time{
		time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC),
	}, resetter.times(model.GoalMonthly))
	assert.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), s.Next()[model.GoalMonthly])
}

func TestResetScheduler_DailyAndWeekly(t *testing.T) {
	// 2024-03-13 是周三
	clock := newFakeClock(testStart)
	resetter := &recordingResetter{clock: clock}
	s := NewResetScheduler(resetter, clock, zap.NewNop())

	s.Start(context.Background())
	defer s.Stop()

	clock.Advance(5 * 24 * time.Hour)

	daily := resetter.times(model.GoalDaily)
	require.Len(t, daily, 5)
	for i, at := range daily {
		assert.Equal(t, time.Date(2024, time.March, 14+i, 0, 0, 0, 0, time.UTC), at)
	}

	// 周日零点每日与每周同时触发，两者都要执行
	assert.Equal(t, []time.Time{time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC)}, resetter.times(model.GoalWeekly))
	assert.Contains(t, daily, time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC))
}

func TestResetScheduler_ResetsGoalService(t *testing.T) {
	goals, _, _, clock := newTestGoalService(t)
	ctx := context.Background()
	daily := mustCreate(t, goals, model.GoalDaily, model.CategoryVocabulary, 10)
	weekly := mustCreate(t, goals, model.GoalWeekly, model.CategoryVocabulary, 10)
	_, err := goals.ReportProgress(ctx, model.CategoryVocabulary, 4)
	require.NoError(t, err)

	s := NewResetScheduler(goals, clock, zap.NewNop())
	s.Start(ctx)
	defer s.Stop()

	clock.Advance(15 * time.Hour)

	got, _ := goals.GetGoal(daily.ID)
	assert.Equal(t, 0, got.Progress)
	got, _ = goals.GetGoal(weekly.ID)
	assert.Equal(t, 4, got.Progress)
}

func TestResetScheduler_Stop(t *testing.T) {
	clock := newFakeClock(testStart)
	resetter := &recordingResetter{clock: clock}
	s := NewResetScheduler(resetter, clock, zap.NewNop())

	s.Start(context.Background())
	assert.Equal(t, 3, clock.pending())

	s.Stop()
	s.Stop()

	assert.Zero(t, clock.pending())
	assert.Empty(t, s.Next())

	clock.Advance(40 * 24 * time.Hour)
	assert.Empty(t, resetter.calls)
}

func TestResetScheduler_StartTwiceArmsOnce(t *testing.T) {
	clock := newFakeClock(testStart)
	s := NewResetScheduler(&recordingResetter{clock: clock}, clock, zap.NewNop())

	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, 3, clock.pending())
}

func TestResetScheduler_StopsWithContext(t *testing.T) {
	clock := newFakeClock(testStart)
	s := NewResetScheduler(&recordingResetter{clock: clock}, clock, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return clock.pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestResetScheduler_StopReleasesWatcher(t *testing.T) {
	clock := newFakeClock(testStart)
	s := NewResetScheduler(&recordingResetter{clock: clock}, clock, zap.NewNop())

	// 从不取消的 ctx
	s.Start(context.Background())
	s.Stop()

	exited := make(chan struct{})
	go func() {
		s.watchers.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("context watcher still running after Stop")
	}

	// 可以再次启动
	s.Start(context.Background())
	defer s.Stop()
	assert.Equal(t, 3, clock.pending())
}

func TestResetScheduler_Fire(t *testing.T) {
	clock := newFakeClock(testStart)
	resetter := &recordingResetter{clock: clock}
	s := NewResetScheduler(resetter, clock, zap.NewNop())

	_, err := s.Fire(context.Background(), model.GoalWeekly)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{testStart}, resetter.times(model.GoalWeekly))
}
