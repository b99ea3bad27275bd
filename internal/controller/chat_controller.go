package controller

import (
	"errors"

	"learnmate_backend/internal/service"
	"learnmate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// Ask godoc
// @Summary 学习问答
// @Description 向 AI 助教提问，自动带上当前学习计划作为背景
// @Tags 问答
// @Accept  json
// @Produce  json
// @Param   body body service.ChatRequest true "问题内容，可选关联会话 ID"
// @Success 200 {object} util.Response{data=service.ChatResponse}
// @Failure 400 {object} util.Response "消息为空"
// @Failure 502 {object} util.Response "AI 服务不可用"
// @Security BearerAuth
// @Router /api/chat [post]
func (c *ChatController) Ask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.ChatService.Ask(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrMessageRequired) {
			util.BadRequest(ctx, "message is required")
		} else {
			// 问答没有本地兜底，AI 失败直接向调用方暴露
			util.Error(ctx, 502, "AI assistant is temporarily unavailable")
		}
		return
	}

	util.Success(ctx, resp)
}

// History godoc
// @Summary 问答历史
// @Description 返回近期对话记录，可按学习会话过滤
// @Tags 问答
// @Produce  json
// @Param   sessionId query int false "学习会话 ID"
// @Param   limit query int false "返回条数，默认50"
// @Success 200 {object} util.Response{data=[]model.ChatMessage}
// @Security BearerAuth
// @Router /api/chat/history [get]
func (c *ChatController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := util.MustParseUint(ctx.Query("sessionId"))
	limit := util.MustParseInt(ctx.DefaultQuery("limit", "50"))

	messages, err := c.ChatService.History(claims.UserID, sessionID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, messages)
}
