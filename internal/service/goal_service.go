package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GoalPersistence 目标列表的持久化，实现见 repository.DualStore
type GoalPersistence interface {
	Load(ctx context.Context) ([]model.Goal, bool, error)
	Save(ctx context.Context, goals []model.Goal) error
}

// GoalService 目标存储：进度累加、完成判定、周期重置。
// 内存状态先于持久化更新，写入失败不回滚。
type GoalService struct {
	mu      sync.Mutex
	goals   []model.Goal
	version uint64

	// persistMu 串行化写出；written 为最近一次写出的快照版本
	persistMu sync.Mutex
	written   uint64

	store    GoalPersistence
	notifier Notifier
	clock    Clock
	log      *zap.Logger
	newID    func() string
}

type GoalStats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
}

func NewGoalService(store GoalPersistence, notifier Notifier, clock Clock, log *zap.Logger) *GoalService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GoalService{
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log,
		newID:    newGoalID,
	}
}

func newGoalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Load 远端优先，失败回退本地缓存，都没有时从空列表开始
func (s *GoalService) Load(ctx context.Context) error {
	goals, found, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("load goals failed, starting empty", zap.Error(err))
	}
	if !found {
		goals = nil
	}

	valid := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Target <= 0 || !g.Type.Valid() || !g.Category.Valid() {
			s.log.Warn("dropping malformed goal", zap.String("goal_id", g.ID))
			continue
		}
		if g.Progress < 0 {
			g.Progress = 0
		}
		if g.Progress > g.Target {
			g.Progress = g.Target
		}
		if g.Status != model.GoalCompleted {
			g.Status = model.GoalActive
		}
		// 已达到 target 的目标不会再收到进度，直接视为完成
		if g.Status == model.GoalActive && g.Progress == g.Target {
			at := s.clock.Now()
			g.Status = model.GoalCompleted
			g.CompletedAt = &at
			s.log.Info("promoting goal at target to completed", zap.String("goal_id", g.ID))
		}
		valid = append(valid, g)
	}

	s.mu.Lock()
	s.goals = valid
	s.mu.Unlock()

	s.log.Info("goals loaded", zap.Int("count", len(valid)))
	return nil
}

// CreateGoal 创建目标并写出完整列表
func (s *GoalService) CreateGoal(ctx context.Context, goalType model.GoalType, category model.GoalCategory, target int) (*model.Goal, error) {
	return s.CreateGoalWithTitle(ctx, "", goalType, category, target)
}

func (s *GoalService) CreateGoalWithTitle(ctx context.Context, title string, goalType model.GoalType, category model.GoalCategory, target int) (*model.Goal, error) {
	if !goalType.Valid() {
		return nil, util.NewValidationError("type", fmt.Sprintf("unknown goal type %q", goalType))
	}
	if !category.Valid() {
		return nil, util.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
	}
	if target <= 0 {
		return nil, util.NewValidationError("target", "must be a positive integer")
	}

	goal := model.Goal{
		ID:        s.newID(),
		Title:     title,
		Type:      goalType,
		Category:  category,
		Target:    target,
		Progress:  0,
		Status:    model.GoalActive,
		CreatedAt: s.clock.Now(),
	}

	s.mutate(ctx, func() bool {
		s.goals = append(s.goals, goal)
		return true
	})

	s.log.Debug("goal created",
		zap.String("goal_id", goal.ID),
		zap.String("type", string(goalType)),
		zap.String("category", string(category)),
		zap.Int("target", target))

	created := goal.Clone()
	return &created, nil
}

// ReportProgress 为该分类下所有进行中的目标累加进度并截断到 target。
// 首次达到 target 时标记完成并通知一次；整批只写一次。
func (s *GoalService) ReportProgress(ctx context.Context, category model.GoalCategory, amount int) ([]model.Goal, error) {
	if !category.Valid() {
		return nil, util.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
	}
	if amount < 0 {
		return nil, util.NewValidationError("amount", "must not be negative")
	}
	if amount == 0 {
		return nil, nil
	}

	var touched, completed []model.Goal
	now := s.clock.Now()

	s.mutate(ctx, func() bool {
		for i := range s.goals {
			g := &s.goals[i]
			if !g.IsActive() || g.Category != category {
				continue
			}
			if g.Progress >= g.Target {
				continue
			}

			if amount >= g.Target-g.Progress {
				g.Progress = g.Target
			} else {
				g.Progress += amount
			}

			if g.Progress == g.Target {
				at := now
				g.Status = model.GoalCompleted
				g.CompletedAt = &at
				completed = append(completed, g.Clone())
			}
			touched = append(touched, g.Clone())
		}
		return len(touched) > 0
	})

	for i := range completed {
		s.notifyCompleted(&completed[i])
	}

	return touched, nil
}

// CompleteGoal 手动完成，与当前进度无关；已完成时为幂等
func (s *GoalService) CompleteGoal(ctx context.Context, id string) (*model.Goal, error) {
	var (
		result      model.Goal
		found       bool
		transitions bool
	)

	s.mutate(ctx, func() bool {
		idx := s.indexLocked(id)
		if idx < 0 {
			return false
		}
		found = true
		g := &s.goals[idx]
		if g.Status == model.GoalCompleted {
			result = g.Clone()
			return false
		}
		at := s.clock.Now()
		g.Status = model.GoalCompleted
		g.CompletedAt = &at
		transitions = true
		result = g.Clone()
		return true
	})

	if !found {
		return nil, util.NewNotFoundError("goal", id)
	}
	if transitions {
		s.notifyCompleted(&result)
	}
	return &result, nil
}

// DeleteGoal 无条件删除，确认交给界面处理
func (s *GoalService) DeleteGoal(ctx context.Context, id string) error {
	var found bool
	s.mutate(ctx, func() bool {
		idx := s.indexLocked(id)
		if idx < 0 {
			return false
		}
		found = true
		s.goals = append(s.goals[:idx], s.goals[idx+1:]...)
		return true
	})

	if !found {
		return util.NewNotFoundError("goal", id)
	}
	s.log.Debug("goal deleted", zap.String("goal_id", id))
	return nil
}

func (s *GoalService) GetGoal(id string) (*model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, util.NewNotFoundError("goal", id)
	}
	g := s.goals[idx].Clone()
	return &g, nil
}

// ListGoals 进行中在前、已完成在后，组内按创建时间倒序
func (s *GoalService) ListGoals(filter model.GoalFilter) ([]model.Goal, error) {
	switch filter {
	case "", model.GoalFilterAll, model.GoalFilterActive, model.GoalFilterCompleted:
	default:
		return nil, util.NewValidationError("filter", fmt.Sprintf("unknown filter %q", filter))
	}

	type indexed struct {
		goal  model.Goal
		index int
	}

	s.mu.Lock()
	items := make([]indexed, 0, len(s.goals))
	for i, g := range s.goals {
		switch filter {
		case model.GoalFilterActive:
			if g.Status != model.GoalActive {
				continue
			}
		case model.GoalFilterCompleted:
			if g.Status != model.GoalCompleted {
				continue
			}
		}
		items = append(items, indexed{goal: g.Clone(), index: i})
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.goal.IsActive() != b.goal.IsActive() {
			return a.goal.IsActive()
		}
		if !a.goal.CreatedAt.Equal(b.goal.CreatedAt) {
			return a.goal.CreatedAt.After(b.goal.CreatedAt)
		}
		return a.index > b.index
	})

	out := make([]model.Goal, len(items))
	for i := range items {
		out[i] = items[i].goal
	}
	return out, nil
}

// ResetCadence 将该周期类型下进行中目标的进度清零，已完成的不受影响
func (s *GoalService) ResetCadence(ctx context.Context, cadence model.GoalType) (int, error) {
	if !cadence.Periodic() {
		return 0, util.NewValidationError("cadence", fmt.Sprintf("%q goals are never reset", cadence))
	}

	reset := 0
	s.mutate(ctx, func() bool {
		for i := range s.goals {
			g := &s.goals[i]
			if g.Type != cadence || !g.IsActive() || g.Progress == 0 {
				continue
			}
			g.Progress = 0
			reset++
		}
		return reset > 0
	})

	monitoring.GoalResets.WithLabelValues(string(cadence)).Add(float64(reset))
	s.log.Info("goals reset", zap.String("cadence", string(cadence)), zap.Int("count", reset))
	return reset, nil
}

func (s *GoalService) Stats() GoalStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats GoalStats
	for _, g := range s.goals {
		stats.Total++
		if g.Status == model.GoalCompleted {
			stats.Completed++
		} else {
			stats.Active++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
	}
	return stats
}

// mutate 在锁内执行变更；有变化时带版本号写出快照。
// 等待写出时不持有 mu，读操作不受 I/O 影响；落后于已写出版本的快照直接丢弃。
func (s *GoalService) mutate(ctx context.Context, fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	version := s.version
	snapshot := make([]model.Goal, len(s.goals))
	for i := range s.goals {
		snapshot[i] = s.goals[i].Clone()
	}
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.written {
		s.log.Debug("skipping stale goal snapshot", zap.Uint64("version", version), zap.Uint64("written", s.written))
		return
	}
	s.written = version
	if err := s.store.Save(ctx, snapshot); err != nil {
		s.log.Error("persist goals failed", zap.Error(err))
	}
}

func (s *GoalService) indexLocked(id string) int {
	for i := range s.goals {
		if s.goals[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *GoalService) notifyCompleted(g *model.Goal) {
	monitoring.GoalsCompleted.Inc()
	title := g.Title
	if title == "" {
		title = fmt.Sprintf("%s %s goal", g.Type, g.Category)
	}
	s.notifier.Notify(model.NotifyGoalCompleted, model.NotificationPayload{
		Title:    "Goal completed!",
		Message:  fmt.Sprintf("%s: %d/%d", title, g.Progress, g.Target),
		TargetID: g.ID,
	})
}
