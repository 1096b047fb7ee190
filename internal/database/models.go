package database

import (
	"time"
)

// SecurityEvent 安全事件记录（只追加，从不更新或删除）
type SecurityEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"index" json:"event_id"`
	Timestamp   time.Time `gorm:"index" json:"timestamp"`
	UserID      int64     `gorm:"index" json:"user_id"`
	UserName    string    `json:"user_name"`
	EventType   string    `gorm:"index" json:"event_type"`
	Description string    `gorm:"type:text" json:"description"`
	Level       string    `gorm:"index" json:"level"`
	ChatID      *int64    `json:"chat_id,omitempty"`
	MessageID   *int64    `json:"message_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message 原始消息记录，按 message_id 覆盖写入以跟踪编辑
type Message struct {
	MessageID int64     `gorm:"primaryKey;autoIncrement:false;column:message_id" json:"message_id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	UserName  string    `json:"user_name"`
	ChatID    int64     `gorm:"index" json:"chat_id"`
	Content   string    `gorm:"type:text" json:"content"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedAt time.Time `json:"updated_at"`
}
