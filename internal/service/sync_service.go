package service

import (
	"errors"
	"fmt"
	"time"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GoalRepo interface {
	FindByUserID(userID uint) ([]model.Goal, error)
	ReplaceForUser(userID uint, goals []model.Goal) error
}

type AchievementRepo interface {
	FindByUserID(userID uint) ([]model.Achievement, error)
	ReplaceForUser(userID uint, achievements []model.Achievement) error
	FindLockedByActivity(userID uint, activityType string) ([]model.Achievement, error)
	Unlock(userID uint, id string, at time.Time) (bool, error)
}

// SyncService 服务端持久化：按用户整体读写目标与成就，并提供服务端判定的解锁
type SyncService struct {
	GoalRepo        GoalRepo
	AchievementRepo AchievementRepo
	Notifier        Notifier
	Clock           Clock
	Log             *zap.Logger
}

func NewSyncService(goalRepo GoalRepo, achievementRepo AchievementRepo, notifier Notifier, log *zap.Logger) *SyncService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncService{
		GoalRepo:        goalRepo,
		AchievementRepo: achievementRepo,
		Notifier:        notifier,
		Clock:           SystemClock{},
		Log:             log,
	}
}

func (s *SyncService) GetGoals(userID uint) ([]model.Goal, error) {
	return s.GoalRepo.FindByUserID(userID)
}

// SaveGoals 校验后整体覆盖；缺少 ID 或创建时间的记录由服务端补齐
func (s *SyncService) SaveGoals(userID uint, goals []model.Goal) error {
	seen := make(map[string]struct{}, len(goals))
	now := s.Clock.Now()

	for i := range goals {
		g := &goals[i]
		if err := validateStoredGoal(g); err != nil {
			return err
		}
		if g.ID == "" {
			g.ID = newGoalID()
		}
		if _, dup := seen[g.ID]; dup {
			return util.NewValidationError("id", fmt.Sprintf("duplicate goal id %q", g.ID))
		}
		seen[g.ID] = struct{}{}
		if g.CreatedAt.IsZero() {
			g.CreatedAt = now
		}
		if g.Status == model.GoalCompleted && g.CompletedAt == nil {
			at := now
			g.CompletedAt = &at
		}
	}

	if err := s.GoalRepo.ReplaceForUser(userID, goals); err != nil {
		return err
	}
	s.Log.Debug("goals saved", zap.Uint("user_id", userID), zap.Int("count", len(goals)))
	return nil
}

func validateStoredGoal(g *model.Goal) error {
	switch {
	case !g.Type.Valid():
		return util.NewValidationError("type", fmt.Sprintf("unknown goal type %q", g.Type))
	case !g.Category.Valid():
		return util.NewValidationError("category", fmt.Sprintf("unknown category %q", g.Category))
	case g.Target <= 0:
		return util.NewValidationError("target", "must be a positive integer")
	case g.Progress < 0 || g.Progress > g.Target:
		return util.NewValidationError("progress", fmt.Sprintf("%d outside [0, %d]", g.Progress, g.Target))
	}
	switch g.Status {
	case "":
		g.Status = model.GoalActive
	case model.GoalActive, model.GoalCompleted:
	default:
		return util.NewValidationError("status", fmt.Sprintf("unknown status %q", g.Status))
	}
	if g.Status == model.GoalActive && g.Progress == g.Target {
		g.Status = model.GoalCompleted
	}
	return nil
}

func (s *SyncService) GetAchievements(userID uint) (model.AchievementGroups, error) {
	list, err := s.AchievementRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	return model.GroupAchievements(list), nil
}

// SaveAchievements 整体覆盖；已解锁状态不会被回退
func (s *SyncService) SaveAchievements(userID uint, groups model.AchievementGroups) error {
	list := groups.Flatten()
	seen := make(map[string]struct{}, len(list))
	now := s.Clock.Now()

	for i := range list {
		a := &list[i]
		if a.ID == "" {
			return util.NewValidationError("id", "must not be empty")
		}
		if _, dup := seen[a.ID]; dup {
			return util.NewValidationError("id", fmt.Sprintf("duplicate achievement id %q", a.ID))
		}
		seen[a.ID] = struct{}{}
		if a.Target < 0 {
			return util.NewValidationError("target", "must not be negative")
		}
		if a.Progress < 0 {
			a.Progress = 0
		}
		if a.Target > 0 && a.Progress > a.Target {
			a.Progress = a.Target
		}
		if a.Unlocked && a.UnlockedAt == nil {
			at := now
			a.UnlockedAt = &at
		}
	}

	return s.AchievementRepo.ReplaceForUser(userID, list)
}

// UnlockAchievement 服务端判定的解锁，幂等
func (s *SyncService) UnlockAchievement(userID uint, id string) (bool, error) {
	first, err := s.AchievementRepo.Unlock(userID, id, s.Clock.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, util.NewNotFoundError("achievement", id)
	}
	if err != nil {
		return false, err
	}
	if first {
		monitoring.AchievementsUnlocked.Inc()
		s.Log.Info("achievement unlocked", zap.Uint("user_id", userID), zap.String("achievement_id", id))
		s.Notifier.Notify(model.NotifyAchievementUnlocked, model.NotificationPayload{
			Title:    "Achievement unlocked!",
			TargetID: id,
		})
	}
	return first, nil
}

// CheckActivity 评估该活动类型下未解锁的成就并解锁满足条件的
func (s *SyncService) CheckActivity(userID uint, activityType string, value int) ([]model.Achievement, error) {
	if activityType == "" {
		return nil, util.NewValidationError("activityType", "must not be empty")
	}

	candidates, err := s.AchievementRepo.FindLockedByActivity(userID, activityType)
	if err != nil {
		return nil, err
	}

	unlocked := []model.Achievement{}
	now := s.Clock.Now()
	for _, a := range candidates {
		if !a.Qualifies(value) {
			continue
		}
		first, err := s.AchievementRepo.Unlock(userID, a.ID, now)
		if err != nil {
			return unlocked, err
		}
		if !first {
			continue
		}
		a.MarkUnlocked(now)
		unlocked = append(unlocked, a)
		monitoring.AchievementsUnlocked.Inc()
		s.Notifier.Notify(model.NotifyAchievementUnlocked, model.NotificationPayload{
			Title:    "Achievement unlocked!",
			Message:  a.Name,
			TargetID: a.ID,
			Points:   a.Points,
		})
	}
	return unlocked, nil
}
