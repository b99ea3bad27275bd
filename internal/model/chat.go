package model

import (
	"time"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage AI问答模式的历史消息，支持多轮对话回放。
// SessionID 关联学习会话，为 0 表示不挂在任何计划下的自由问答。
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	SessionID uint      `gorm:"index" json:"sessionId"`
	Role      string    `gorm:"size:20;not null" json:"role"` // user 或 assistant
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
