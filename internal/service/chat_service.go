package service

import (
	"context"
	"strings"

	"learnmate_backend/internal/model"
	"learnmate_backend/internal/repository"
	"learnmate_backend/internal/util"
	"learnmate_backend/pkg/logger"

	"go.uber.org/zap"
)

// ChatService 学习问答：带上当前计划摘要做背景，多轮历史从近期消息取
type ChatService struct {
	ChatRepo    *repository.ChatRepository
	SessionRepo *repository.SessionRepository
	AI          *AIService

	historyTurns int
}

func NewChatService(chatRepo *repository.ChatRepository, sessionRepo *repository.SessionRepository, ai *AIService) *ChatService {
	return &ChatService{
		ChatRepo:     chatRepo,
		SessionRepo:  sessionRepo,
		AI:           ai,
		historyTurns: 10,
	}
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID uint   `json:"sessionId"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Ask 发起一轮问答。用户消息与助手回复都会落库并进近期缓存。
func (s *ChatService) Ask(ctx context.Context, userID uint, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, util.ErrMessageRequired
	}

	background := s.planBackground(userID, req.SessionID)
	history := s.recentHistory(userID)

	reply, err := s.AI.Chat(ctx, message, background, history)
	if err != nil {
		return nil, err
	}

	if err := s.ChatRepo.Create(&model.ChatMessage{
		UserID:    userID,
		SessionID: req.SessionID,
		Role:      model.ChatRoleUser,
		Content:   message,
	}); err != nil {
		logger.Log.Warn("Failed to persist user chat message",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
	if err := s.ChatRepo.Create(&model.ChatMessage{
		UserID:    userID,
		SessionID: req.SessionID,
		Role:      model.ChatRoleAssistant,
		Content:   reply,
	}); err != nil {
		logger.Log.Warn("Failed to persist assistant chat message",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}

	return &ChatResponse{Reply: reply}, nil
}

func (s *ChatService) History(userID uint, sessionID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if sessionID > 0 {
		return s.ChatRepo.ListBySession(userID, sessionID, limit)
	}
	return s.ChatRepo.ListRecent(userID, limit)
}

// planBackground 取会话摘要作为问答背景，没有计划时为空
func (s *ChatService) planBackground(userID, sessionID uint) string {
	if sessionID > 0 {
		if session, err := s.SessionRepo.FindByIDForUser(sessionID, userID); err == nil {
			return session.Summary
		}
		return ""
	}
	if session, err := s.SessionRepo.FindLatestByUser(userID); err == nil {
		return session.Summary
	}
	return ""
}

func (s *ChatService) recentHistory(userID uint) []AIChatMessage {
	messages, err := s.ChatRepo.ListRecent(userID, s.historyTurns)
	if err != nil {
		return nil
	}
	history := make([]AIChatMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, AIChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history
}
