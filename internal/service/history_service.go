package service

import (
	"context"
	"errors"
	"time"

	"learnmate_backend/internal/curriculum"
	"learnmate_backend/internal/model"
	"learnmate_backend/internal/repository"
	"learnmate_backend/internal/util"

	"gorm.io/gorm"
)

// HistoryService 学习历史：会话列表、恢复与删除
type HistoryService struct {
	SessionRepo *repository.SessionRepository
	PlanCache   *repository.PlanCacheRepository
	Policy      curriculum.Policy
}

func NewHistoryService(
	sessionRepo *repository.SessionRepository,
	planCache *repository.PlanCacheRepository,
	policy curriculum.Policy,
) *HistoryService {
	return &HistoryService{
		SessionRepo: sessionRepo,
		PlanCache:   planCache,
		Policy:      policy,
	}
}

// HistoryItem 历史列表条目，不携带课纲大字段
type HistoryItem struct {
	SessionID    uint       `json:"sessionId"`
	Topic        string     `json:"topic"`
	Level        string     `json:"level"`
	State        string     `json:"state"`
	CurrentWeek  int        `json:"currentWeek"`
	Progress     int        `json:"progress"`
	LastAccessed time.Time  `json:"lastAccessed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (s *HistoryService) List(userID uint, level string, page, limit int) ([]HistoryItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	sessions, total, err := s.SessionRepo.ListByUser(userID, level, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]HistoryItem, len(sessions))
	for i, session := range sessions {
		progress := resumeProgress(&session, s.Policy)
		items[i] = HistoryItem{
			SessionID:    session.ID,
			Topic:        session.Topic,
			Level:        session.Level,
			State:        string(session.State),
			CurrentWeek:  session.CurrentWeek,
			Progress:     progress.Percent(),
			LastAccessed: session.LastAccessed,
			CompletedAt:  session.CompletedAt,
			CreatedAt:    session.CreatedAt,
		}
	}
	return items, total, nil
}

// Get 返回单条完整记录，含课纲原文
func (s *HistoryService) Get(userID, sessionID uint) (*model.LearningSession, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Resume 恢复某个历史会话为当前计划：刷新访问时间并重建缓存
func (s *HistoryService) Resume(ctx context.Context, userID, sessionID uint) (*model.LearningSession, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	if err := s.SessionRepo.TouchLastAccessed(session.ID); err == nil {
		session.LastAccessed = time.Now()
	}

	s.PlanCache.Invalidate(ctx, userID)
	return session, nil
}

func (s *HistoryService) Delete(ctx context.Context, userID, sessionID uint) error {
	err := s.SessionRepo.Delete(sessionID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	s.PlanCache.Invalidate(ctx, userID)
	return nil
}

func (s *HistoryService) Clear(ctx context.Context, userID uint) (int64, error) {
	deleted, err := s.SessionRepo.DeleteAllByUser(userID)
	if err != nil {
		return 0, err
	}
	s.PlanCache.Invalidate(ctx, userID)
	return deleted, nil
}
