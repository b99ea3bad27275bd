package controller

import (
	"errors"

	"learnmate_backend/internal/curriculum"
	"learnmate_backend/internal/service"
	"learnmate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningController 学习计划与周进度接口
type LearningController struct {
	LearningService *service.LearningService
	ProgressService *service.ProgressService
}

func NewLearningController(learningService *service.LearningService, progressService *service.ProgressService) *LearningController {
	return &LearningController{
		LearningService: learningService,
		ProgressService: progressService,
	}
}

func (c *LearningController) requestUser(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// weekError 把周访问的领域错误映射为 HTTP 状态
func weekError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, curriculum.ErrWeekLocked):
		util.Error(ctx, 403, "This week is still locked. Pass the previous assessment to unlock it.")
	case errors.Is(err, curriculum.ErrWeekOutOfRange):
		util.BadRequest(ctx, "week out of range")
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreatePlan godoc
// @Summary 生成学习计划
// @Description 按主题与难度生成多周学习计划，AI 不可用时返回本地课纲
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Param   body body service.CreatePlanRequest true "主题与难度"
// @Success 201 {object} util.Response{data=service.PlanResponse} "生成成功"
// @Failure 400 {object} util.Response "主题为空"
// @Failure 401 {object} util.Response "未认证"
// @Security BearerAuth
// @Router /api/learning/plans [post]
func (c *LearningController) CreatePlan(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	var req service.CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.LearningService.CreatePlan(ctx.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, util.ErrTopicRequired) {
			util.BadRequest(ctx, "topic is required")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, plan)
}

// GetCurrentPlan godoc
// @Summary 获取当前学习计划
// @Description 返回用户最近访问的学习计划及逐周状态
// @Tags 学习计划
// @Produce  json
// @Success 200 {object} util.Response{data=service.PlanResponse} "当前计划"
// @Failure 404 {object} util.Response "没有进行中的计划"
// @Security BearerAuth
// @Router /api/learning/plans/current [get]
func (c *LearningController) GetCurrentPlan(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	plan, err := c.LearningService.GetCurrentPlan(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, util.ErrNoActivePlan) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, plan)
}

// GetSession godoc
// @Summary 获取指定学习会话
// @Tags 学习计划
// @Produce  json
// @Param   id path int true "会话 ID"
// @Success 200 {object} util.Response{data=service.PlanResponse}
// @Failure 404 {object} util.Response "会话不存在"
// @Security BearerAuth
// @Router /api/learning/sessions/{id} [get]
func (c *LearningController) GetSession(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	plan, err := c.LearningService.GetSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, plan)
}

// GetWeek godoc
// @Summary 获取某周学习内容
// @Description 锁定周返回 403，不会返回测验题目的正确答案
// @Tags 学习计划
// @Produce  json
// @Param   id path int true "会话 ID"
// @Param   week path int true "周序号"
// @Success 200 {object} util.Response{data=service.WeekContentResponse}
// @Failure 403 {object} util.Response "该周尚未解锁"
// @Security BearerAuth
// @Router /api/learning/sessions/{id}/weeks/{week} [get]
func (c *LearningController) GetWeek(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	week := util.MustParseInt(ctx.Param("week"))

	content, err := c.ProgressService.GetWeek(userID, sessionID, week)
	if err != nil {
		weekError(ctx, err)
		return
	}

	util.Success(ctx, content)
}

// GetWeekQuestions godoc
// @Summary 获取某周测验题目
// @Description 每周固定题量，正确答案保留在服务端
// @Tags 学习计划
// @Produce  json
// @Param   id path int true "会话 ID"
// @Param   week path int true "周序号"
// @Success 200 {object} util.Response{data=[]service.QuestionView}
// @Failure 403 {object} util.Response "该周尚未解锁"
// @Security BearerAuth
// @Router /api/learning/sessions/{id}/weeks/{week}/questions [get]
func (c *LearningController) GetWeekQuestions(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	week := util.MustParseInt(ctx.Param("week"))

	questions, err := c.ProgressService.GetWeekQuestions(userID, sessionID, week)
	if err != nil {
		weekError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// SubmitWeek godoc
// @Summary 提交某周测验答案
// @Description 评分并返回状态变化：是否通过、解锁的下一周、总进度
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Param   id path int true "会话 ID"
// @Param   week path int true "周序号"
// @Param   body body service.SubmitAnswersRequest true "答案表，题目下标 → 选项字母"
// @Success 200 {object} util.Response{data=curriculum.SubmitResult}
// @Failure 403 {object} util.Response "该周尚未解锁"
// @Security BearerAuth
// @Router /api/learning/sessions/{id}/weeks/{week}/submit [post]
func (c *LearningController) SubmitWeek(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	week := util.MustParseInt(ctx.Param("week"))

	var req service.SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.SubmitWeek(ctx.Request.Context(), userID, sessionID, week, req.Answers)
	if err != nil {
		weekError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// SelectWeek godoc
// @Summary 切换展示周
// @Description 校验目标周可访问并返回其内容，不改变持久化进度
// @Tags 学习计划
// @Produce  json
// @Param   id path int true "会话 ID"
// @Param   week path int true "周序号"
// @Success 200 {object} util.Response{data=service.WeekContentResponse}
// @Failure 403 {object} util.Response "该周尚未解锁"
// @Security BearerAuth
// @Router /api/learning/sessions/{id}/weeks/{week}/select [post]
func (c *LearningController) SelectWeek(ctx *gin.Context) {
	userID, ok := c.requestUser(ctx)
	if !ok {
		return
	}

	sessionID := util.MustParseUint(ctx.Param("id"))
	week := util.MustParseInt(ctx.Param("week"))

	content, err := c.ProgressService.SelectWeek(userID, sessionID, week)
	if err != nil {
		weekError(ctx, err)
		return
	}

	util.Success(ctx, content)
}
