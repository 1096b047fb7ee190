package security

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"chatwarden/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		SuspiciousThreshold: 3,
		SpamThreshold:       5,
		SpamWindow:          10 * time.Second,
		ReasonHistoryLimit:  100,
		EscalationPolicy:    constants.EscalateEveryAdd,
	}
}

// recordingHandler captures escalation callbacks
type recordingHandler struct {
	mu    sync.Mutex
	calls []Snapshot
}

func (h *recordingHandler) OnHighSuspicion(userKey string, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, snap)
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func TestLedger_AddSuspicion_Accumulates(t *testing.T) {
	l := NewLedger(testOptions())
	now := time.Now()

	points := []int{1, 2, 4, 1}
	sum := 0
	for i, p := range points {
		snap, _, err := l.AddSuspicion("alice", fmt.Sprintf("reason-%d", i), p, now)
		require.NoError(t, err)
		sum += p
		assert.Equal(t, sum, snap.TotalPoints)
	}

	snap := l.Scan("alice")
	assert.Equal(t, 8, snap.TotalPoints)
	// 快照只含最近 3 条原因
	assert.Equal(t, []string{"reason-1", "reason-2", "reason-3"}, snap.LastReasons)
}

func TestLedger_AddSuspicion_RejectsNonPositivePoints(t *testing.T) {
	l := NewLedger(testOptions())
	now := time.Now()

	_, _, err := l.AddSuspicion("alice", "x", 0, now)
	assert.ErrorIs(t, err, ErrNonPositivePoints)

	_, _, err = l.AddSuspicion("alice", "x", -5, now)
	assert.ErrorIs(t, err, ErrNonPositivePoints)

	// 被拒绝的调用不得创建记录
	assert.Equal(t, 0, l.Count())
}

func TestLedger_Escalation_EveryQualifyingAdd(t *testing.T) {
	l := NewLedger(testOptions())
	h := &recordingHandler{}
	l.SetHandler(h)
	now := time.Now()

	_, escalated, err := l.AddSuspicion("bob", "a", 2, now)
	require.NoError(t, err)
	assert.False(t, escalated)
	assert.Equal(t, 0, h.count())

	// 2 -> 4 跨过阈值 3
	_, escalated, err = l.AddSuspicion("bob", "b", 2, now)
	require.NoError(t, err)
	assert.True(t, escalated)
	assert.Equal(t, 1, h.count())

	// 已在阈值之上：默认策略下每次合格累加都再次触发（无去重）
	_, escalated, err = l.AddSuspicion("bob", "c", 1, now)
	require.NoError(t, err)
	assert.True(t, escalated)
	assert.Equal(t, 2, h.count())
}

func TestLedger_Escalation_OncePerCrossing(t *testing.T) {
	opts := testOptions()
	opts.EscalationPolicy = constants.EscalateCrossing
	l := NewLedger(opts)
	h := &recordingHandler{}
	l.SetHandler(h)
	now := time.Now()

	_, escalated, _ := l.AddSuspicion("bob", "a", 2, now)
	assert.False(t, escalated)

	_, escalated, _ = l.AddSuspicion("bob", "b", 2, now)
	assert.True(t, escalated)

	// 仅首次越线触发
	_, escalated, _ = l.AddSuspicion("bob", "c", 1, now)
	assert.False(t, escalated)
	assert.Equal(t, 1, h.count())

	// Clear 后重新越线再次触发
	l.Clear("bob")
	_, escalated, _ = l.AddSuspicion("bob", "d", 5, now)
	assert.True(t, escalated)
	assert.Equal(t, 2, h.count())
}

func TestLedger_Scan_StatusBands(t *testing.T) {
	l := NewLedger(testOptions())
	now := time.Now()

	// 未知用户：零值快照，不报错
	snap := l.Scan("alice")
	assert.Equal(t, constants.StatusSafe, snap.Status)
	assert.Equal(t, 0, snap.TotalPoints)
	assert.Empty(t, snap.LastReasons)

	_, _, err := l.AddSuspicion("alice", "x", 2, now)
	require.NoError(t, err)
	snap = l.Scan("alice")
	assert.Equal(t, constants.StatusSuspicious, snap.Status)
	assert.Equal(t, 2, snap.TotalPoints)

	_, escalated, err := l.AddSuspicion("alice", "y", 2, now)
	require.NoError(t, err)
	assert.True(t, escalated)
	snap = l.Scan("alice")
	assert.Equal(t, constants.StatusDangerous, snap.Status)
	assert.Equal(t, 4, snap.TotalPoints)
}

func TestLedger_Clear(t *testing.T) {
	l := NewLedger(testOptions())
	now := time.Now()

	assert.False(t, l.Clear("ghost"))

	l.AddSuspicion("alice", "x", 1, now)
	assert.Equal(t, 1, l.Count())

	assert.True(t, l.Clear("alice"))
	assert.Equal(t, 0, l.Count())
	assert.Equal(t, constants.StatusSafe, l.Scan("alice").Status)
}

func TestLedger_ReasonHistoryLimit(t *testing.T) {
	opts := testOptions()
	opts.ReasonHistoryLimit = 5
	l := NewLedger(opts)
	now := time.Now()

	for i := 0; i < 20; i++ {
		_, _, err := l.AddSuspicion("alice", fmt.Sprintf("r-%d", i), 1, now)
		require.NoError(t, err)
	}

	// 累计分保持单调，不随历史截断回退
	snap := l.Scan("alice")
	assert.Equal(t, 20, snap.TotalPoints)
	assert.Equal(t, []string{"r-17", "r-18", "r-19"}, snap.LastReasons)
}

func TestLedger_ConcurrentAddSuspicion_NoLostUpdates(t *testing.T) {
	l := NewLedger(Options{
		SuspiciousThreshold: 1 << 30, // 避免测试中触发回调
		SpamThreshold:       5,
		SpamWindow:          10 * time.Second,
	})
	now := time.Now()

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, _, err := l.AddSuspicion("alice", "load", 1, now)
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, l.Scan("alice").TotalPoints)
}

func TestUserKey(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		username string
		expected string
	}{
		{"username preferred", 42, "alice", "alice"},
		{"fallback to id", 42, "", "42"},
		{"whitespace username falls back", 42, "   ", "42"},
		{"negative id", -7, "", "-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserKey(tt.id, tt.username))
		})
	}
}
