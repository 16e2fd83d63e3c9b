package controller

import (
	"net/http"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	SyncService *service.SyncService
}

func NewAchievementController(syncService *service.SyncService) *AchievementController {
	return &AchievementController{SyncService: syncService}
}

// @Summary 获取用户成就
// @Description 按分类分组返回当前用户的成就（不包裹统一响应结构）
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AchievementGroups
// @Router /api/achievements [get]
func (c *AchievementController) GetAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groups, err := c.SyncService.GetAchievements(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

// @Summary 覆盖用户成就
// @Description 整体替换当前用户的成就，已解锁的成就保持解锁
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param achievements body model.AchievementGroups true "分类 -> 成就列表"
// @Success 200 {object} model.AchievementGroups
// @Failure 400 {object} util.Response
// @Router /api/achievements [post]
func (c *AchievementController) SaveAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var groups model.AchievementGroups
	if err := ctx.ShouldBindJSON(&groups); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SyncService.SaveAchievements(user.UserID, groups); err != nil {
		util.HandleError(ctx, err)
		return
	}

	saved, err := c.SyncService.GetAchievements(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, saved)
}

// @Summary 解锁成就
// @Description 服务端判定的解锁，与进度无关，重复调用无副作用
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Param id path string true "成就ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/achievements/{id}/unlock [post]
func (c *AchievementController) UnlockAchievement(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := ctx.Param("id")
	first, err := c.SyncService.UnlockAchievement(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"id":            id,
		"unlocked":      true,
		"newlyUnlocked": first,
	})
}

// @Summary 按活动评估成就
// @Description 评估该活动类型下尚未解锁的成就，返回本次解锁的成就
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param activity body model.ActivityEvent true "活动类型与数值"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/achievements/check [post]
func (c *AchievementController) CheckActivity(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.ActivityEvent
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	unlocked, err := c.SyncService.CheckActivity(user.UserID, req.ActivityType, req.Value)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, unlocked)
}
