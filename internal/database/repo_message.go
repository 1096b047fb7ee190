package database

import (
	"chatwarden/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepo 原始消息数据仓库
type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{db: DB}
}

// Upsert 按 message_id 覆盖写入（同一条消息被编辑后保留最新内容）
func (r *MessageRepo) Upsert(msg *Message) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "user_name", "chat_id", "content", "timestamp", "updated_at",
		}),
	}).Create(msg).Error
	if err != nil {
		logger.DB.Error().Err(err).Int64("message_id", msg.MessageID).Msg("消息写入失败")
		return err
	}
	return nil
}

// Get 按 message_id 读取
func (r *MessageRepo) Get(messageID int64) (*Message, error) {
	var msg Message
	err := r.db.Where("message_id = ?", messageID).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountByUser 统计某用户的留存消息数
func (r *MessageRepo) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&Message{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// RecentByChat 按会话查询最近 N 条消息
func (r *MessageRepo) RecentByChat(chatID int64, limit int) ([]Message, error) {
	var msgs []Message
	err := r.db.Where("chat_id = ?", chatID).
		Order("timestamp desc").Limit(limit).Find(&msgs).Error
	return msgs, err
}
