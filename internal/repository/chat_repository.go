package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnmate_backend/internal/model"
	"learnmate_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ChatRepository struct {
	DB          *gorm.DB
	Redis       *redis.Client
	recentLimit int64
	recentTTL   time.Duration
}

func NewChatRepository(db *gorm.DB, rdb *redis.Client) *ChatRepository {
	return &ChatRepository{
		DB:          db,
		Redis:       rdb,
		recentLimit: 50,
		recentTTL:   24 * time.Hour,
	}
}

func (r *ChatRepository) recentKey(userID uint) string {
	return fmt.Sprintf("chat:recent:%d", userID)
}

// Create 持久化消息并同步写入 Redis 近期消息缓存。
// 缓存写入失败只记日志，消息本身以数据库为准。
func (r *ChatRepository) Create(msg *model.ChatMessage) error {
	if err := r.DB.Create(msg).Error; err != nil {
		return err
	}

	if r.Redis != nil {
		ctx := context.Background()
		payload, err := json.Marshal(msg)
		if err == nil {
			key := r.recentKey(msg.UserID)
			pipe := r.Redis.Pipeline()
			pipe.LPush(ctx, key, payload)
			pipe.LTrim(ctx, key, 0, r.recentLimit-1)
			pipe.Expire(ctx, key, r.recentTTL)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.Log.Warn("Failed to cache chat message",
					zap.Uint("user_id", msg.UserID),
					zap.Error(err))
			}
		}
	}
	return nil
}

// ListRecent 优先读 Redis 缓存，未命中回源数据库
func (r *ChatRepository) ListRecent(userID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || int64(limit) > r.recentLimit {
		limit = int(r.recentLimit)
	}

	if r.Redis != nil {
		ctx := context.Background()
		raw, err := r.Redis.LRange(ctx, r.recentKey(userID), 0, int64(limit)-1).Result()
		if err == nil && len(raw) > 0 {
			messages := make([]model.ChatMessage, 0, len(raw))
			for _, item := range raw {
				var msg model.ChatMessage
				if err := json.Unmarshal([]byte(item), &msg); err != nil {
					continue
				}
				messages = append(messages, msg)
			}
			// 缓存按最新在前存储，翻转为时间正序
			for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
				messages[i], messages[j] = messages[j], messages[i]
			}
			if len(messages) > 0 {
				return messages, nil
			}
		}
	}

	var messages []model.ChatMessage
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *ChatRepository) ListBySession(userID, sessionID uint, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.DB.Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *ChatRepository) DeleteByUser(userID uint) error {
	if r.Redis != nil {
		r.Redis.Del(context.Background(), r.recentKey(userID))
	}
	return r.DB.Where("user_id = ?", userID).Delete(&model.ChatMessage{}).Error
}
