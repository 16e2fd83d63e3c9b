package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type AchievementPersistence interface {
	Load(ctx context.Context) (model.AchievementGroups, bool, error)
	Save(ctx context.Context, groups model.AchievementGroups) error
}

// AchievementService 成就存储。解锁状态以 Unlocked/UnlockedAt 为准，
// 每次状态转换只通知一次。
type AchievementService struct {
	mu       sync.Mutex
	groups   model.AchievementGroups
	degraded bool
	version  uint64

	persistMu sync.Mutex
	written   uint64

	store    AchievementPersistence
	notifier Notifier
	clock    Clock
	log      *zap.Logger
}

type AchievementStats struct {
	Total           int `json:"total"`
	Unlocked        int `json:"unlocked"`
	EarnedPoints    int `json:"earnedPoints"`
	AvailablePoints int `json:"availablePoints"`
}

func NewAchievementService(store AchievementPersistence, notifier Notifier, clock Clock, log *zap.Logger) *AchievementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AchievementService{
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// GetAll 重新拉取成就目录；远端与本地缓存都不可用时使用内置样例，不返回错误
func (s *AchievementService) GetAll(ctx context.Context) model.AchievementGroups {
	groups, found, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn("load achievements failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case found && len(groups) > 0:
		s.groups = normalizeGroups(groups)
		s.degraded = false
	case s.groups == nil:
		s.log.Warn("achievement catalog unavailable, using built-in samples")
		s.groups = SampleAchievements()
		s.degraded = true
	}

	return s.groups.Clone()
}

// Degraded 当前目录是否为内置样例
func (s *AchievementService) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// UpdateProgress 设置进度并截断到 [0, target]，首次达到 target 时解锁。
// id 不存在时静默忽略。
func (s *AchievementService) UpdateProgress(ctx context.Context, id string, progress int) {
	var (
		found    bool
		unlocked model.Achievement
		first    bool
	)

	s.mutate(ctx, func() bool {
		a := s.findLocked(id)
		if a == nil {
			return false
		}
		found = true

		switch {
		case progress < 0:
			progress = 0
		case progress > a.Target:
			progress = a.Target
		}
		a.Progress = progress

		if a.Progress >= a.Target && a.MarkUnlocked(s.clock.Now()) {
			first = true
			unlocked = a.Clone()
		}
		return true
	})

	if !found {
		s.log.Debug("update progress for unknown achievement", zap.String("achievement_id", id))
		return
	}
	if first {
		s.notifyUnlocked(&unlocked)
	}
}

// Unlock 直接解锁，与进度无关；返回是否为首次解锁
func (s *AchievementService) Unlock(ctx context.Context, id string) (bool, error) {
	var (
		found    bool
		first    bool
		unlocked model.Achievement
	)

	s.mutate(ctx, func() bool {
		a := s.findLocked(id)
		if a == nil {
			return false
		}
		found = true
		if !a.MarkUnlocked(s.clock.Now()) {
			return false
		}
		first = true
		unlocked = a.Clone()
		return true
	})

	if !found {
		return false, util.NewNotFoundError("achievement", id)
	}
	if first {
		s.notifyUnlocked(&unlocked)
	}
	return first, nil
}

// CheckAndUpdateProgress 评估该活动类型下所有未解锁成就，解锁满足条件的并返回它们
func (s *AchievementService) CheckAndUpdateProgress(ctx context.Context, activityType string, value int) ([]model.Achievement, error) {
	if activityType == "" {
		return nil, util.NewValidationError("activityType", "must not be empty")
	}

	var newly []model.Achievement
	now := s.clock.Now()

	s.mutate(ctx, func() bool {
		for _, category := range s.categoriesLocked() {
			list := s.groups[category]
			for i := range list {
				a := &list[i]
				if a.ActivityType != activityType || a.IsUnlocked() || !a.Qualifies(value) {
					continue
				}
				if a.Progress < a.Target {
					a.Progress = a.Target
				}
				a.MarkUnlocked(now)
				newly = append(newly, a.Clone())
			}
		}
		return len(newly) > 0
	})

	for i := range newly {
		s.notifyUnlocked(&newly[i])
	}
	return newly, nil
}

func (s *AchievementService) Stats() AchievementStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats AchievementStats
	for _, list := range s.groups {
		for _, a := range list {
			stats.Total++
			stats.AvailablePoints += a.Points
			if a.IsUnlocked() {
				stats.Unlocked++
				stats.EarnedPoints += a.Points
			}
		}
	}
	return stats
}

// mutate 与 GoalService.mutate 相同：锁外写出，丢弃过期快照
func (s *AchievementService) mutate(ctx context.Context, fn func() bool) {
	s.mu.Lock()
	if s.groups == nil || !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	version := s.version
	snapshot := s.groups.Clone()
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.written {
		return
	}
	s.written = version
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.log.Error("persist achievements failed", zap.Error(err))
	}
}

func (s *AchievementService) findLocked(id string) *model.Achievement {
	for _, list := range s.groups {
		for i := range list {
			if list[i].ID == id {
				return &list[i]
			}
		}
	}
	return nil
}

// categoriesLocked 固定遍历顺序，保证通知顺序稳定
func (s *AchievementService) categoriesLocked() []string {
	categories := make([]string, 0, len(s.groups))
	for c := range s.groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

func (s *AchievementService) notifyUnlocked(a *model.Achievement) {
	monitoring.AchievementsUnlocked.Inc()
	s.notifier.Notify(model.NotifyAchievementUnlocked, model.NotificationPayload{
		Title:    "Achievement unlocked!",
		Message:  fmt.Sprintf("%s: %s", a.Name, a.Description),
		TargetID: a.ID,
		Points:   a.Points,
	})
}

// normalizeGroups 补齐分类并截断进度
func normalizeGroups(groups model.AchievementGroups) model.AchievementGroups {
	out := groups.Clone()
	for category, list := range out {
		for i := range list {
			a := &list[i]
			if a.Category == "" {
				a.Category = category
			}
			if a.Progress < 0 {
				a.Progress = 0
			}
			if a.Target > 0 && a.Progress > a.Target {
				a.Progress = a.Target
			}
		}
	}
	return out
}
