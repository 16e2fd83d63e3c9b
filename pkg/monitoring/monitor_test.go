package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_ExposesTrackerCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()

	GoalsCompleted.Inc()
	GoalResets.WithLabelValues("daily").Add(2)
	NotificationsDropped.Inc()

	srv := NewServer("127.0.0.1:0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tracker_goals_completed_total")
	assert.Contains(t, body, `tracker_goal_resets_total{cadence="daily"}`)
	assert.Contains(t, body, "tracker_notifications_dropped_total")
	assert.Contains(t, body, "tracker_achievements_unlocked_total")
}

func TestInit_IsIdempotent(t *testing.T) {
	Init()
	assert.NotPanics(t, Init)

	before := testutil.ToFloat64(AchievementsUnlocked)
	AchievementsUnlocked.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AchievementsUnlocked))
}
