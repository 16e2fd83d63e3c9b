package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []model.Notification
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, n)
	return nil
}

func newTestTracker(t *testing.T, sinks ...*recordingSink) *Tracker {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, "[]")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Tracker: config.TrackerConfig{
			RemoteURL:      srv.URL,
			RequestTimeout: time.Second,
			CacheDriver:    "sqlite",
			CachePath:      filepath.Join(t.TempDir(), "cache.db"),
			DismissAfter:   4 * time.Second,
			Timezone:       "UTC",
		},
	}

	extra := make([]service.NotificationSink, 0, len(sinks))
	for _, s := range sinks {
		extra = append(extra, s)
	}

	tracker, err := NewTracker(context.Background(), cfg, "", extra...)
	require.NoError(t, err)
	return tracker
}

func TestTracker_RunOnceDeliversNotifications(t *testing.T) {
	sink := &recordingSink{}
	tracker := newTestTracker(t, sink)

	err := tracker.RunOnce(func(ctx context.Context, tr *Tracker) error {
		if _, err := tr.Goals.CreateGoal(ctx, model.GoalDaily, model.CategoryGames, 2); err != nil {
			return err
		}
		_, err := tr.Goals.ReportProgress(ctx, model.CategoryGames, 2)
		return err
	})
	require.NoError(t, err)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.delivered, 1)
	assert.Equal(t, model.NotifyGoalCompleted, sink.delivered[0].Kind)
}

func TestTracker_RunOnceReturnsCommandError(t *testing.T) {
	tracker := newTestTracker(t)

	err := tracker.RunOnce(func(ctx context.Context, tr *Tracker) error {
		return tr.Goals.DeleteGoal(ctx, "missing")
	})
	assert.Error(t, err)
}
