package controller

import (
	"net/http"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	SyncService *service.SyncService
}

func NewGoalController(syncService *service.SyncService) *GoalController {
	return &GoalController{SyncService: syncService}
}

// @Summary 获取目标列表
// @Description 返回当前用户的全部目标（JSON 数组，不包裹统一响应结构）
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Goal
// @Router /goals [get]
func (c *GoalController) GetGoals(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goals, err := c.SyncService.GetGoals(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, goals)
}

// @Summary 覆盖目标列表
// @Description 以请求体中的数组整体替换当前用户的目标
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goals body []model.Goal true "完整目标列表"
// @Success 200 {array} model.Goal
// @Failure 400 {object} util.Response
// @Router /goals [post]
func (c *GoalController) SaveGoals(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var goals []model.Goal
	if err := ctx.ShouldBindJSON(&goals); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SyncService.SaveGoals(user.UserID, goals); err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, goals)
}
