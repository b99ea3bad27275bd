package controller

import (
	"errors"

	"learnmate_backend/internal/service"
	"learnmate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	HistoryService *service.HistoryService
}

func NewHistoryController(historyService *service.HistoryService) *HistoryController {
	return &HistoryController{HistoryService: historyService}
}

// List godoc
// @Summary 学习历史列表
// @Description 分页返回用户的学习会话，可按难度过滤
// @Tags 学习历史
// @Produce  json
// @Param   level query string false "难度过滤" Enums(beginner, intermediate, advanced)
// @Param   page query int false "页码，默认1"
// @Param   limit query int false "每页条数，默认20"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Security BearerAuth
// @Router /api/history [get]
func (c *HistoryController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	level := ctx.Query("level")
	page := util.MustParseInt(ctx.DefaultQuery("page", "1"))
	limit := util.MustParseInt(ctx.DefaultQuery("limit", "20"))

	items, total, err := c.HistoryService.List(claims.UserID, level, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 获取单条学习历史
// @Description 返回完整记录，包含课纲原文与逐周得分
// @Tags 学习历史
// @Produce  json
// @Param   id path int true "会话 ID"
// @Success 200 {object} util.Response{data=model.LearningSession}
// @Failure 404 {object} util.Response "会话不存在"
// @Security BearerAuth
// @Router /api/history/{id} [get]
func (c *HistoryController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	session, err := c.HistoryService.Get(claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, session)
}

// Resume godoc
// @Summary 恢复历史会话
// @Description 将某个历史会话设为当前计划并刷新访问时间
// @Tags 学习历史
// @Produce  json
// @Param   id path int true "会话 ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "会话不存在"
// @Security BearerAuth
// @Router /api/history/{id}/resume [post]
func (c *HistoryController) Resume(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	session, err := c.HistoryService.Resume(ctx.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"sessionId":   session.ID,
		"topic":       session.Topic,
		"state":       session.State,
		"currentWeek": session.CurrentWeek,
	})
}

// Delete godoc
// @Summary 删除单条学习历史
// @Tags 学习历史
// @Produce  json
// @Param   id path int true "会话 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "会话不存在"
// @Security BearerAuth
// @Router /api/history/{id} [delete]
func (c *HistoryController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	if err := c.HistoryService.Delete(ctx.Request.Context(), claims.UserID, sessionID); err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// Clear godoc
// @Summary 清空学习历史
// @Description 删除用户全部学习会话及其周得分
// @Tags 学习历史
// @Produce  json
// @Success 200 {object} util.Response{data=object} "返回删除条数"
// @Security BearerAuth
// @Router /api/history [delete]
func (c *HistoryController) Clear(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	deleted, err := c.HistoryService.Clear(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": deleted})
}
