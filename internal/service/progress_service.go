package service

import (
	"context"
	"errors"
	"time"

	"learnmate_backend/internal/curriculum"
	"learnmate_backend/internal/model"
	"learnmate_backend/internal/repository"
	"learnmate_backend/internal/util"
	"learnmate_backend/pkg/logger"
	"learnmate_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 周内容访问与测验提交。解锁判定全部走 curriculum.Progress
// 状态机，这里只负责加载、落库与视图组装。
type ProgressService struct {
	SessionRepo *repository.SessionRepository
	PlanCache   *repository.PlanCacheRepository
	Policy      curriculum.Policy
}

func NewProgressService(
	sessionRepo *repository.SessionRepository,
	planCache *repository.PlanCacheRepository,
	policy curriculum.Policy,
) *ProgressService {
	return &ProgressService{
		SessionRepo: sessionRepo,
		PlanCache:   planCache,
		Policy:      policy,
	}
}

// WeekContentResponse 单周学习内容视图
type WeekContentResponse struct {
	Week        int    `json:"week"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	State       string `json:"state"`
	Score       *int   `json:"score,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// QuestionView 下发给客户端的题目，不携带正确答案
type QuestionView struct {
	Index   int       `json:"index"`
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
}

type SubmitAnswersRequest struct {
	Answers map[int]string `json:"answers" binding:"required"`
}

func (s *ProgressService) loadSession(userID, sessionID uint) (*model.LearningSession, curriculum.Progress, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, curriculum.Progress{}, util.ErrSessionNotFound
		}
		return nil, curriculum.Progress{}, err
	}
	return session, resumeProgress(session, s.Policy), nil
}

// GetWeek 返回第 week 周的学习内容。锁定周返回 ErrWeekLocked。
func (s *ProgressService) GetWeek(userID, sessionID uint, week int) (*WeekContentResponse, error) {
	session, progress, err := s.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := progress.Select(week); err != nil {
		return nil, err
	}

	if err := s.SessionRepo.TouchLastAccessed(session.ID); err != nil {
		logger.Log.Warn("Failed to touch session access time",
			zap.Uint("session_id", session.ID),
			zap.Error(err))
	}

	wc := curriculum.ParseWeek(session.Curriculum, week, session.Topic, s.Policy)

	resp := &WeekContentResponse{
		Week:        wc.Week,
		Title:       wc.Title,
		Body:        wc.Body,
		State:       string(progress.WeekState(week)),
		Placeholder: !wc.Found,
	}
	if score, ok := progress.Scores[week]; ok {
		sc := score
		resp.Score = &sc
	}
	return resp, nil
}

// GetWeekQuestions 返回第 week 周的测验题目，正确答案留在服务端
func (s *ProgressService) GetWeekQuestions(userID, sessionID uint, week int) ([]QuestionView, error) {
	session, progress, err := s.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := progress.Select(week); err != nil {
		return nil, err
	}

	questions := s.weekQuestions(session, week)
	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{
			Index:   i,
			Text:    q.Text,
			Options: q.Options,
		}
	}
	return views, nil
}

// SelectWeek 校验展示导航。导航不改变持久化进度，只刷新访问时间。
func (s *ProgressService) SelectWeek(userID, sessionID uint, week int) (*WeekContentResponse, error) {
	return s.GetWeek(userID, sessionID, week)
}

// SubmitWeek 评分并推进状态机，然后把新状态写回持久化记录。
// 落库失败不吞掉本次评分结果：日志告警后照常返回，下次提交会重建状态。
func (s *ProgressService) SubmitWeek(ctx context.Context, userID, sessionID uint, week int, answers map[int]string) (*curriculum.SubmitResult, error) {
	session, progress, err := s.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	questions := s.weekQuestions(session, week)
	now := time.Now()

	result, err := progress.Submit(week, questions, answers, now)
	if err != nil {
		monitoring.AssessmentSubmissions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if result.Passed {
		monitoring.AssessmentSubmissions.WithLabelValues("passed").Inc()
	} else {
		monitoring.AssessmentSubmissions.WithLabelValues("failed").Inc()
	}

	s.persistProgress(ctx, session, progress, week, result, now)

	return &result, nil
}

func (s *ProgressService) weekQuestions(session *model.LearningSession, week int) []curriculum.Question {
	wc := curriculum.ParseWeek(session.Curriculum, week, session.Topic, s.Policy)
	return curriculum.NormalizeQuestions(wc.Assessment, session.Topic, week, s.Policy)
}

func (s *ProgressService) persistProgress(ctx context.Context, session *model.LearningSession, progress curriculum.Progress, week int, result curriculum.SubmitResult, now time.Time) {
	if err := s.SessionRepo.UpsertWeekScore(&model.WeekScore{
		SessionID:   session.ID,
		Week:        week,
		Score:       result.Score,
		CompletedAt: now,
	}); err != nil {
		logger.Log.Error("Failed to persist week score",
			zap.Uint("session_id", session.ID),
			zap.Int("week", week),
			zap.Error(err))
	}

	var completedAt *time.Time
	if !progress.CompletedAt.IsZero() {
		t := progress.CompletedAt
		completedAt = &t
	}
	if err := s.SessionRepo.UpdateProgress(
		session.ID,
		string(progress.State),
		progress.CurrentWeek,
		progress.Percent(),
		completedAt,
	); err != nil {
		logger.Log.Error("Failed to persist session progress",
			zap.Uint("session_id", session.ID),
			zap.Error(err))
	}

	// 缓存快照已过期，作废等下次读取回填
	if err := s.PlanCache.Invalidate(ctx, session.UserID); err != nil {
		logger.Log.Warn("Failed to invalidate plan cache",
			zap.Uint("user_id", session.UserID),
			zap.Error(err))
	}
}
