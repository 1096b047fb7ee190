package database

import (
	"chatwarden/internal/logger"

	"gorm.io/gorm"
)

// EventRepo 安全事件数据仓库
type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo() *EventRepo {
	return &EventRepo{db: DB}
}

// Create 写入一条安全事件。写入失败向调用方返回错误，不静默丢弃。
func (r *EventRepo) Create(event *SecurityEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		logger.Event.Error().Err(err).Str("event_type", event.EventType).Msg("安全事件写入失败")
		return err
	}
	return nil
}

// Count 统计事件总数
func (r *EventRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&SecurityEvent{}).Count(&count).Error
	return count, err
}

// CountByType 按事件类型统计（全量历史）
func (r *EventRepo) CountByType() (map[string]int64, error) {
	type result struct {
		EventType string
		Count     int64
	}
	var results []result
	err := r.db.Model(&SecurityEvent{}).
		Select("event_type, count(*) as count").
		Group("event_type").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, r := range results {
		counts[r.EventType] = r.Count
	}
	return counts, nil
}

// List 分页查询事件
func (r *EventRepo) List(filter EventFilter) ([]SecurityEvent, int64, error) {
	var events []SecurityEvent
	var total int64

	q := r.db.Model(&SecurityEvent{})
	if filter.EventType != "" {
		q = q.Where("event_type = ?", filter.EventType)
	}
	if filter.UserID > 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}
	if filter.StartTime != "" {
		q = q.Where("timestamp >= ?", filter.StartTime)
	}
	if filter.EndTime != "" {
		q = q.Where("timestamp <= ?", filter.EndTime)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "timestamp"
	}
	sortOrder := filter.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	err := q.Order(sortBy + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&events).Error
	return events, total, err
}

// EventFilter 事件查询筛选条件
type EventFilter struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	EventType string
	UserID    int64
	Level     string
	StartTime string
	EndTime   string
}

func (f *EventFilter) Offset() int {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	return (f.Page - 1) * f.PageSize
}
