package repository

import (
	"errors"
	"lingua_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindByUserID(userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Where("user_id = ?", userID).Order("category, id").Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

// ReplaceForUser 整体覆盖；已解锁的成就不会被客户端回写为未解锁
func (r *AchievementRepository) ReplaceForUser(userID uint, achievements []model.Achievement) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var unlocked []model.Achievement
		if err := tx.Where("user_id = ? AND unlocked = ?", userID, true).Find(&unlocked).Error; err != nil {
			return err
		}
		kept := make(map[string]model.Achievement, len(unlocked))
		for _, a := range unlocked {
			kept[a.ID] = a
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.Achievement{}).Error; err != nil {
			return err
		}
		if len(achievements) == 0 {
			return nil
		}

		for i := range achievements {
			achievements[i].UserID = userID
			if prev, ok := kept[achievements[i].ID]; ok && !achievements[i].Unlocked {
				achievements[i].Unlocked = true
				achievements[i].UnlockedAt = prev.UnlockedAt
			}
		}
		return tx.CreateInBatches(achievements, 100).Error
	})
}

// FindLockedByActivity 查询某活动类型下尚未解锁的成就
func (r *AchievementRepository) FindLockedByActivity(userID uint, activityType string) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Where("user_id = ? AND activity_type = ? AND unlocked = ?", userID, activityType, false).
		Find(&achievements).Error
	return achievements, err
}

// Unlock 幂等；返回是否本次解锁。成就不存在时返回 gorm.ErrRecordNotFound
func (r *AchievementRepository) Unlock(userID uint, id string, at time.Time) (bool, error) {
	res := r.DB.Model(&model.Achievement{}).
		Where("user_id = ? AND id = ? AND unlocked = ?", userID, id, false).
		Updates(map[string]interface{}{
			"unlocked":    true,
			"unlocked_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var existing model.Achievement
	err := r.DB.Where("user_id = ? AND id = ?", userID, id).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, gorm.ErrRecordNotFound
	}
	return false, err
}
