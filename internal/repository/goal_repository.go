package repository

import (
	"lingua_edu_backend/internal/model"

	"gorm.io/gorm"
)

// GoalRepository 服务端按用户保存目标列表

type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

// FindByUserID 获取用户的所有目标，最新创建的在前
func (r *GoalRepository) FindByUserID(userID uint) ([]model.Goal, error) {
	goals := []model.Goal{}
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&goals).Error
	return goals, err
}

// ReplaceForUser 整体覆盖用户的目标列表
func (r *GoalRepository) ReplaceForUser(userID uint, goals []model.Goal) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Goal{}).Error; err != nil {
			return err
		}
		if len(goals) == 0 {
			return nil
		}
		for i := range goals {
			goals[i].UserID = userID
		}
		return tx.CreateInBatches(goals, 100).Error
	})
}
