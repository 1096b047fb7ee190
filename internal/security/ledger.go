package security

import (
	"errors"
	"sync"
	"time"

	"chatwarden/internal/constants"
	"chatwarden/internal/logger"
)

// ErrNonPositivePoints 扣分必须为正整数
var ErrNonPositivePoints = errors.New("suspicion points must be a positive integer")

// Reason 一次扣分的原因条目
type Reason struct {
	Reason    string    `json:"reason"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// Record 单个用户的可疑状态。由 Ledger 持有，只能经 Ledger 方法访问。
type Record struct {
	TotalPoints    int
	Reasons        []Reason
	RecentMessages []time.Time
}

// Snapshot 只读的用户风险快照
type Snapshot struct {
	UserKey     string   `json:"user_key"`
	TotalPoints int      `json:"total_points"`
	Status      string   `json:"status"`
	LastReasons []string `json:"last_reasons,omitempty"`
}

// HighSuspicionHandler 在用户累计分越过阈值时被调用。
// Ledger 在锁内做出判定，在锁外调用 handler（告警发送不得阻塞账本）。
type HighSuspicionHandler interface {
	OnHighSuspicion(userKey string, snap Snapshot)
}

// Options 账本运行参数，随配置热更新整体替换
type Options struct {
	SuspiciousThreshold int
	SpamThreshold       int
	SpamWindow          time.Duration
	ReasonHistoryLimit  int
	EscalationPolicy    string
}

// Ledger 每用户可疑状态账本。单把互斥锁覆盖整个 map：
// 读-剪枝-追加 与 读-累加-判定 各构成一个临界区。
type Ledger struct {
	mu       sync.Mutex
	users    map[string]*Record
	opts     Options
	escalate HighSuspicionHandler
}

func NewLedger(opts Options) *Ledger {
	return &Ledger{
		users: make(map[string]*Record),
		opts:  opts,
	}
}

// SetHandler 注入越阈值回调
func (l *Ledger) SetHandler(h HighSuspicionHandler) {
	l.mu.Lock()
	l.escalate = h
	l.mu.Unlock()
}

// SetOptions 原子替换运行参数（配置热更新）
func (l *Ledger) SetOptions(opts Options) {
	l.mu.Lock()
	l.opts = opts
	l.mu.Unlock()
}

// AddSuspicion 为用户累加可疑分。用户不存在时惰性创建；
// 累计分达到阈值时按策略触发回调，回调在返回前同步执行。
// 返回更新后的快照以及本次是否触发了升级。
func (l *Ledger) AddSuspicion(userKey, reason string, points int, now time.Time) (Snapshot, bool, error) {
	if points <= 0 {
		return Snapshot{}, false, ErrNonPositivePoints
	}

	l.mu.Lock()
	rec, ok := l.users[userKey]
	if !ok {
		rec = &Record{}
		l.users[userKey] = rec
	}

	prev := rec.TotalPoints
	rec.TotalPoints += points
	rec.Reasons = append(rec.Reasons, Reason{Reason: reason, Points: points, Timestamp: now})

	// 原因历史按配置截断，累计分保持单调不回算
	if limit := l.opts.ReasonHistoryLimit; limit > 0 && len(rec.Reasons) > limit {
		rec.Reasons = append(rec.Reasons[:0], rec.Reasons[len(rec.Reasons)-limit:]...)
	}

	threshold := l.opts.SuspiciousThreshold
	escalated := false
	switch l.opts.EscalationPolicy {
	case constants.EscalateCrossing:
		escalated = prev < threshold && rec.TotalPoints >= threshold
	default:
		escalated = rec.TotalPoints >= threshold
	}

	snap := l.snapshotLocked(userKey, rec)
	handler := l.escalate
	l.mu.Unlock()

	logger.Risk.Info().
		Str("user", userKey).
		Str("reason", reason).
		Int("points", points).
		Int("total", snap.TotalPoints).
		Bool("escalated", escalated).
		Msg("可疑分已累加")

	if escalated && handler != nil {
		handler.OnHighSuspicion(userKey, snap)
	}
	return snap, escalated, nil
}

// Scan 返回用户风险快照。未知用户返回零值快照，不报错。
func (l *Ledger) Scan(userKey string) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.users[userKey]
	if !ok {
		return Snapshot{UserKey: userKey, Status: constants.StatusSafe}
	}
	return l.snapshotLocked(userKey, rec)
}

// Clear 删除用户记录（解封），返回是否存在过
func (l *Ledger) Clear(userKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.users[userKey]
	if ok {
		delete(l.users, userKey)
	}
	return ok
}

// Count 当前被跟踪的用户数
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}

// snapshotLocked 调用方必须持有 l.mu
func (l *Ledger) snapshotLocked(userKey string, rec *Record) Snapshot {
	snap := Snapshot{
		UserKey:     userKey,
		TotalPoints: rec.TotalPoints,
		Status:      statusFor(rec.TotalPoints),
	}
	n := len(rec.Reasons)
	start := n - 3
	if start < 0 {
		start = 0
	}
	for _, r := range rec.Reasons[start:] {
		snap.LastReasons = append(snap.LastReasons, r.Reason)
	}
	return snap
}

// statusFor 展示档位固定为 0/3 分界，与告警阈值无关
func statusFor(points int) string {
	switch {
	case points == 0:
		return constants.StatusSafe
	case points < 3:
		return constants.StatusSuspicious
	default:
		return constants.StatusDangerous
	}
}
