package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"learnmate_backend/internal/config"
	"learnmate_backend/internal/curriculum"
	"learnmate_backend/internal/model"
	"learnmate_backend/internal/repository"
	"learnmate_backend/internal/util"
	"learnmate_backend/pkg/logger"
	"learnmate_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LearningService 学习计划编排：生成课纲、建立会话、提供计划视图。
// 生成失败不向用户暴露错误，降级为本地课纲。
type LearningService struct {
	SessionRepo *repository.SessionRepository
	PlanCache   *repository.PlanCacheRepository
	AI          *AIService
	Policy      curriculum.Policy
}

func NewLearningService(
	sessionRepo *repository.SessionRepository,
	planCache *repository.PlanCacheRepository,
	ai *AIService,
	cfg config.LearningConfig,
) *LearningService {
	return &LearningService{
		SessionRepo: sessionRepo,
		PlanCache:   planCache,
		AI:          ai,
		Policy: curriculum.Policy{
			TotalWeeks:       cfg.TotalWeeks,
			QuestionsPerWeek: cfg.QuestionsPerWeek,
			PassThreshold:    cfg.PassThreshold,
		},
	}
}

type CreatePlanRequest struct {
	Topic string `json:"topic" binding:"required"`
	Level string `json:"level"`
}

// WeekOverview 计划视图里的单周条目
type WeekOverview struct {
	Week  int    `json:"week"`
	Title string `json:"title"`
	State string `json:"state"`
	Score *int   `json:"score,omitempty"`
}

// PlanResponse 学习计划的完整视图
type PlanResponse struct {
	SessionID   uint           `json:"sessionId"`
	Topic       string         `json:"topic"`
	Level       string         `json:"level"`
	Summary     string         `json:"summary"`
	State       string         `json:"state"`
	CurrentWeek int            `json:"currentWeek"`
	TotalWeeks  int            `json:"totalWeeks"`
	Progress    int            `json:"progress"`
	Weeks       []WeekOverview `json:"weeks"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	// Generator 本次计划的来源：ai 或 fallback，只在创建响应里返回
	Generator string `json:"generator,omitempty"`
}

// CreatePlan 为用户生成新的学习计划。
// 生成器失败时落到确定性本地课纲，学习者永远能拿到可用的计划。
func (s *LearningService) CreatePlan(ctx context.Context, userID uint, req CreatePlanRequest) (*PlanResponse, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, util.ErrTopicRequired
	}
	level := strings.TrimSpace(req.Level)
	if level == "" {
		level = "beginner"
	}

	generator := "ai"
	raw, err := s.AI.GenerateCurriculum(ctx, topic, level, s.Policy.TotalWeeks, s.Policy.QuestionsPerWeek)
	if err != nil {
		logger.Log.Warn("AI curriculum generation failed, using local fallback",
			zap.String("topic", topic),
			zap.Error(err))
		raw = curriculum.FallbackCurriculum(topic, level, s.Policy)
		generator = "fallback"
	}
	monitoring.PlanGenerations.WithLabelValues(generator).Inc()

	summary, _ := curriculum.Split(raw)

	session := &model.LearningSession{
		UserID:       userID,
		Topic:        topic,
		Level:        level,
		Summary:      summary,
		Curriculum:   raw,
		State:        model.SessionNew,
		CurrentWeek:  1,
		TotalWeeks:   s.Policy.TotalWeeks,
		Progress:     0,
		LastAccessed: time.Now(),
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}

	s.cachePlan(ctx, userID, session)

	resp := s.buildPlanResponse(session)
	resp.Generator = generator
	return resp, nil
}

// GetCurrentPlan 返回用户最近访问的计划。缓存只做会话定位的快路径，
// 数据永远从持久化记录重建。
func (s *LearningService) GetCurrentPlan(ctx context.Context, userID uint) (*PlanResponse, error) {
	if cached, err := s.PlanCache.Get(ctx, userID); err == nil && cached != nil {
		session, err := s.SessionRepo.FindByIDForUser(cached.SessionID, userID)
		if err == nil {
			return s.buildPlanResponse(session), nil
		}
		// 缓存指向的会话已删除，作废缓存走全量查询
		s.PlanCache.Invalidate(ctx, userID)
	}

	session, err := s.SessionRepo.FindLatestByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNoActivePlan
		}
		return nil, err
	}

	s.cachePlan(ctx, userID, session)
	return s.buildPlanResponse(session), nil
}

func (s *LearningService) GetSession(userID, sessionID uint) (*PlanResponse, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return s.buildPlanResponse(session), nil
}

// cachePlan 回填计划缓存，失败只记日志
func (s *LearningService) cachePlan(ctx context.Context, userID uint, session *model.LearningSession) {
	err := s.PlanCache.Set(ctx, userID, &repository.CachedPlan{
		SessionID:   session.ID,
		Topic:       session.Topic,
		Level:       session.Level,
		Summary:     session.Summary,
		Curriculum:  session.Curriculum,
		State:       string(session.State),
		CurrentWeek: session.CurrentWeek,
		Progress:    session.Progress,
	})
	if err != nil {
		logger.Log.Warn("Failed to cache learning plan",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
}

func (s *LearningService) buildPlanResponse(session *model.LearningSession) *PlanResponse {
	progress := resumeProgress(session, s.Policy)

	weeks := make([]WeekOverview, 0, s.Policy.TotalWeeks)
	for w := 1; w <= s.Policy.TotalWeeks; w++ {
		overview := WeekOverview{
			Week:  w,
			Title: curriculum.WeekTitle(session.Curriculum, w),
			State: string(progress.WeekState(w)),
		}
		if score, ok := progress.Scores[w]; ok {
			sc := score
			overview.Score = &sc
		}
		weeks = append(weeks, overview)
	}

	return &PlanResponse{
		SessionID:   session.ID,
		Topic:       session.Topic,
		Level:       session.Level,
		Summary:     session.Summary,
		State:       string(session.State),
		CurrentWeek: session.CurrentWeek,
		TotalWeeks:  s.Policy.TotalWeeks,
		Progress:    progress.Percent(),
		Weeks:       weeks,
		CompletedAt: session.CompletedAt,
		CreatedAt:   session.CreatedAt,
	}
}

// resumeProgress 从持久化记录重建进度状态机
func resumeProgress(session *model.LearningSession, policy curriculum.Policy) curriculum.Progress {
	scores := make(map[int]int, len(session.WeekScores))
	for _, ws := range session.WeekScores {
		scores[ws.Week] = ws.Score
	}
	return curriculum.Resume(policy, session.CurrentWeek, curriculum.SessionState(session.State), scores)
}
