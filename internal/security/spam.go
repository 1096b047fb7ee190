package security

import (
	"time"

	"chatwarden/internal/logger"
)

// CheckAndRecord 对用户做滑动窗口刷屏检测。整个检查-剪枝-追加序列在账本锁内完成。
//
// 尚无 Record 的用户不可能刷屏：记录只由 AddSuspicion 惰性创建，检测器不创建。
// 窗口内（含当前消息）达到阈值即判定为刷屏，此时当前消息不入窗口，
// 命中后的冷却由后续剪枝自然完成。
func (l *Ledger) CheckAndRecord(userKey string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.users[userKey]
	if !ok {
		return false
	}

	cutoff := now.Add(-l.opts.SpamWindow)
	pruned := rec.RecentMessages[:0]
	for _, ts := range rec.RecentMessages {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}
	rec.RecentMessages = pruned

	if len(pruned)+1 >= l.opts.SpamThreshold {
		logger.Spam.Warn().
			Str("user", userKey).
			Int("window_count", len(pruned)).
			Msg("检测到刷屏")
		return true
	}

	rec.RecentMessages = append(rec.RecentMessages, now)
	return false
}

// RecentMessageCount 返回用户当前窗口内留存的时间戳数
func (l *Ledger) RecentMessageCount(userKey string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.users[userKey]
	if !ok {
		return 0
	}
	return len(rec.RecentMessages)
}

// SweepWindows 清理所有用户窗口外的残留时间戳（由周期任务调用，限制内存占用）
func (l *Ledger) SweepWindows(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.opts.SpamWindow)
	removed := 0
	for _, rec := range l.users {
		pruned := rec.RecentMessages[:0]
		for _, ts := range rec.RecentMessages {
			if ts.After(cutoff) {
				pruned = append(pruned, ts)
			}
		}
		removed += len(rec.RecentMessages) - len(pruned)
		rec.RecentMessages = pruned
	}
	return removed
}
