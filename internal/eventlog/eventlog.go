package eventlog

import (
	"sync"

	"chatwarden/internal/constants"
	"chatwarden/internal/database"
)

// Log 有界内存事件日志：FIFO 淘汰，供行内查询使用。
// 持久化历史由 database.EventRepo 负责，这里只保留最近一段。
type Log struct {
	mu       sync.Mutex
	capacity int
	events   []database.SecurityEvent
}

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = constants.EventLogCapacity
	}
	return &Log{
		capacity: capacity,
		events:   make([]database.SecurityEvent, 0, capacity),
	}
}

// Append 追加事件，超出容量时先淘汰最旧的一条
func (l *Log) Append(event database.SecurityEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) >= l.capacity {
		overflow := len(l.events) - l.capacity + 1
		l.events = append(l.events[:0], l.events[overflow:]...)
	}
	l.events = append(l.events, event)
}

// Len 当前留存事件数
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Query 返回最近 limit 条匹配事件，按时间正序（最新在末尾）。
// eventType 为空匹配所有类型；limit 超过上限时收紧到 QueryLimitMax。
func (l *Log) Query(eventType string, limit int) []database.SecurityEvent {
	if limit <= 0 || limit > constants.QueryLimitMax {
		limit = constants.QueryLimitMax
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []database.SecurityEvent
	if eventType == "" {
		matched = l.events
	} else {
		for i := range l.events {
			if l.events[i].EventType == eventType {
				matched = append(matched, l.events[i])
			}
		}
	}

	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	out := make([]database.SecurityEvent, len(matched))
	copy(out, matched)
	return out
}

// TypeCount 某一事件类型的计数
type TypeCount struct {
	EventType string
	Count     int
}

// CountByType 按类型统计留存事件，返回顺序为类型首次出现顺序，
// 便于调用方在计数相同时做确定性排序。
func (l *Log) CountByType() []TypeCount {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := make(map[string]int)
	var counts []TypeCount
	for i := range l.events {
		et := l.events[i].EventType
		if pos, ok := index[et]; ok {
			counts[pos].Count++
			continue
		}
		index[et] = len(counts)
		counts = append(counts, TypeCount{EventType: et, Count: 1})
	}
	return counts
}
