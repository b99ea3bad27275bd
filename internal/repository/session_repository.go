package repository

import (
	"time"

	"learnmate_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.LearningSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByIDForUser(id, userID uint) (*model.LearningSession, error) {
	var session model.LearningSession
	err := r.DB.Preload("WeekScores").
		Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	return &session, err
}

// FindLatestByUser 返回用户最近访问的会话，作为"当前计划"
func (r *SessionRepository) FindLatestByUser(userID uint) (*model.LearningSession, error) {
	var session model.LearningSession
	err := r.DB.Preload("WeekScores").
		Where("user_id = ?", userID).
		Order("last_accessed DESC").
		First(&session).Error
	return &session, err
}

func (r *SessionRepository) ListByUser(userID uint, level string, limit, offset int) ([]model.LearningSession, int64, error) {
	var sessions []model.LearningSession
	var total int64

	db := r.DB.Model(&model.LearningSession{}).Where("user_id = ?", userID)
	if level != "" {
		db = db.Where("level = ?", level)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("WeekScores").
		Order("last_accessed DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *SessionRepository) Update(session *model.LearningSession) error {
	return r.DB.Save(session).Error
}

// UpdateProgress 只写进度相关字段，避免整行 Save 覆盖课纲大字段
func (r *SessionRepository) UpdateProgress(sessionID uint, state string, currentWeek, progress int, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"state":         state,
		"current_week":  currentWeek,
		"progress":      progress,
		"last_accessed": time.Now(),
	}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	return r.DB.Model(&model.LearningSession{}).
		Where("id = ?", sessionID).
		Updates(updates).
		Error
}

func (r *SessionRepository) TouchLastAccessed(sessionID uint) error {
	return r.DB.Model(&model.LearningSession{}).
		Where("id = ?", sessionID).
		Update("last_accessed", time.Now()).
		Error
}

// UpsertWeekScore 按 (session_id, week) 写入或覆盖周得分
func (r *SessionRepository) UpsertWeekScore(score *model.WeekScore) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "week"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "completed_at"}),
	}).Create(score).Error
}

func (r *SessionRepository) Delete(sessionID, userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", sessionID, userID).
			Delete(&model.LearningSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("session_id = ?", sessionID).
			Delete(&model.WeekScore{}).Error
	})
}

// DeleteAllByUser 清空用户全部学习历史，返回删除的会话数
func (r *SessionRepository) DeleteAllByUser(userID uint) (int64, error) {
	var deleted int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.LearningSession{}).
			Where("user_id = ?", userID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("session_id IN ?", ids).
			Delete(&model.WeekScore{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ?", userID).Delete(&model.LearningSession{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
