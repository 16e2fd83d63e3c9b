package repository

import (
	"path/filepath"
	"testing"
	"time"

	"lingua_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB 使用 modernc 注册的 sqlite 驱动
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "tracker.db")
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Goal{}, &model.Achievement{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestGoalRepository_SameIDAcrossUsers(t *testing.T) {
	repo := NewGoalRepository(openTestDB(t))
	now := time.Date(2024, time.March, 13, 9, 30, 0, 0, time.UTC)
	shared := func(progress int) []model.Goal {
		return []model.Goal{{
			ID: "shared-id", Type: model.GoalDaily, Category: model.CategoryGames,
			Target: 5, Progress: progress, Status: model.GoalActive, CreatedAt: now,
		}}
	}

	require.NoError(t, repo.ReplaceForUser(1, shared(1)))
	require.NoError(t, repo.ReplaceForUser(2, shared(3)))

	first, err := repo.FindByUserID(1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].Progress)

	second, err := repo.FindByUserID(2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 3, second[0].Progress)
	assert.Equal(t, uint(2), second[0].UserID)

	// 覆盖一个用户不影响另一个
	require.NoError(t, repo.ReplaceForUser(1, nil))
	first, err = repo.FindByUserID(1)
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err = repo.FindByUserID(2)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestGoalRepository_ReplaceOverwrites(t *testing.T) {
	repo := NewGoalRepository(openTestDB(t))

	require.NoError(t, repo.ReplaceForUser(5, []model.Goal{
		{ID: "a", Type: model.GoalDaily, Category: model.CategoryLessons, Target: 3, Status: model.GoalActive},
		{ID: "b", Type: model.GoalWeekly, Category: model.CategoryLessons, Target: 3, Status: model.GoalActive},
	}))
	require.NoError(t, repo.ReplaceForUser(5, []model.Goal{
		{ID: "a", Type: model.GoalDaily, Category: model.CategoryLessons, Target: 3, Progress: 2, Status: model.GoalActive},
	}))

	goals, err := repo.FindByUserID(5)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "a", goals[0].ID)
	assert.Equal(t, 2, goals[0].Progress)
}

func TestAchievementRepository_UnlockPerUser(t *testing.T) {
	repo := NewAchievementRepository(openTestDB(t))
	list := func() []model.Achievement {
		return []model.Achievement{{
			ID: "first_win", Category: "games", Name: "First Win", Target: 1,
			ActivityType: "game_won", Criterion: model.CriterionCount, RequiredCount: 1,
		}}
	}
	require.NoError(t, repo.ReplaceForUser(1, list()))
	require.NoError(t, repo.ReplaceForUser(2, list()))

	at := time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)
	first, err := repo.Unlock(1, "first_win", at)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = repo.Unlock(1, "first_win", at)
	require.NoError(t, err)
	assert.False(t, first)

	_, err = repo.Unlock(1, "missing", at)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 用户 2 的同名成就仍未解锁
	locked, err := repo.FindLockedByActivity(2, "game_won")
	require.NoError(t, err)
	assert.Len(t, locked, 1)

	// 客户端回写未解锁状态时保留已解锁
	require.NoError(t, repo.ReplaceForUser(1, list()))
	rows, err := repo.FindByUserID(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Unlocked)
	assert.NotNil(t, rows[0].UnlockedAt)
}
