package model

import (
	"time"
)

type SessionState string

const (
	SessionNew       SessionState = "new"
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
)

// LearningSession 一次学习计划的持久化记录（历史记录表）。
// Curriculum 保存生成器的完整原文，周内容与题目均在读取时解析，不落库。
// swagger:model LearningSession
type LearningSession struct {
	BaseModel
	UserID       uint         `gorm:"index;not null" json:"userId"`
	Topic        string       `gorm:"size:255;not null" json:"topic"`
	Level        string       `gorm:"size:20;not null" json:"level"`
	Summary      string       `gorm:"type:text" json:"summary"`
	Curriculum   string       `gorm:"type:longtext" json:"curriculum"`
	State        SessionState `gorm:"size:20;default:'new'" json:"state"`
	CurrentWeek  int          `gorm:"default:1" json:"currentWeek"`
	TotalWeeks   int          `gorm:"default:4" json:"totalWeeks"`
	Progress     int          `gorm:"default:0" json:"progress"` // 0-100
	LastAccessed time.Time    `json:"lastAccessed"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`

	WeekScores []WeekScore `gorm:"foreignKey:SessionID" json:"weekScores,omitempty"`
}

func (LearningSession) TableName() string {
	return "learning_sessions"
}

// WeekScore 某个会话中单周测验的最近一次得分，重测覆盖旧分
type WeekScore struct {
	BaseModel
	SessionID   uint      `gorm:"index:idx_session_week,unique;not null" json:"sessionId"`
	Week        int       `gorm:"index:idx_session_week,unique;not null" json:"week"`
	Score       int       `gorm:"not null" json:"score"` // 0-100
	CompletedAt time.Time `json:"completedAt"`
}

func (WeekScore) TableName() string {
	return "week_scores"
}
