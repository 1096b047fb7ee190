package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndRecord_UnknownUserNeverSpams(t *testing.T) {
	l := NewLedger(testOptions())
	now := time.Now()

	// 记录只能由 AddSuspicion 创建，检测器不创建
	for i := 0; i < 20; i++ {
		assert.False(t, l.CheckAndRecord("ghost", now))
	}
	assert.Equal(t, 0, l.Count())
	assert.Equal(t, 0, l.RecentMessageCount("ghost"))
}

func TestCheckAndRecord_BurstDetection(t *testing.T) {
	l := NewLedger(testOptions()) // threshold 5, window 10s
	base := time.Now()

	_, _, err := l.AddSuspicion("alice", "seed", 1, base)
	require.NoError(t, err)

	// 窗口内前 4 条消息入窗
	for i := 0; i < 4; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		assert.False(t, l.CheckAndRecord("alice", now), "message %d", i+1)
	}
	assert.Equal(t, 4, l.RecentMessageCount("alice"))

	// 第 5 条达到阈值：判定刷屏，且触发消息不入窗
	assert.True(t, l.CheckAndRecord("alice", base.Add(4*time.Second)))
	assert.Equal(t, 4, l.RecentMessageCount("alice"))
}

func TestCheckAndRecord_WindowExpiry(t *testing.T) {
	l := NewLedger(testOptions())
	base := time.Now()

	l.AddSuspicion("alice", "seed", 1, base)

	for i := 0; i < 4; i++ {
		l.CheckAndRecord("alice", base.Add(time.Duration(i)*time.Second))
	}

	// 窗口滑过之后旧时间戳被剪枝，不再判定刷屏
	later := base.Add(30 * time.Second)
	assert.False(t, l.CheckAndRecord("alice", later))
	assert.Equal(t, 1, l.RecentMessageCount("alice"))
}

func TestCheckAndRecord_CooldownAfterBurst(t *testing.T) {
	l := NewLedger(testOptions())
	base := time.Now()

	l.AddSuspicion("alice", "seed", 1, base)
	for i := 0; i < 4; i++ {
		l.CheckAndRecord("alice", base.Add(time.Duration(i)*time.Second))
	}

	// 连续刷屏期间窗口不再增长，冷却由剪枝自然完成
	assert.True(t, l.CheckAndRecord("alice", base.Add(5*time.Second)))
	assert.True(t, l.CheckAndRecord("alice", base.Add(6*time.Second)))
	assert.Equal(t, 4, l.RecentMessageCount("alice"))

	assert.False(t, l.CheckAndRecord("alice", base.Add(20*time.Second)))
}

func TestSweepWindows(t *testing.T) {
	l := NewLedger(testOptions())
	base := time.Now()

	l.AddSuspicion("alice", "seed", 1, base)
	l.AddSuspicion("bob", "seed", 1, base)
	for i := 0; i < 3; i++ {
		l.CheckAndRecord("alice", base.Add(time.Duration(i)*time.Second))
		l.CheckAndRecord("bob", base.Add(time.Duration(i)*time.Second))
	}

	removed := l.SweepWindows(base.Add(time.Minute))
	assert.Equal(t, 6, removed)
	assert.Equal(t, 0, l.RecentMessageCount("alice"))
	assert.Equal(t, 0, l.RecentMessageCount("bob"))
}
