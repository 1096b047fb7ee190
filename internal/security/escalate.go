package security

import (
	"fmt"
	"strings"
	"time"

	"chatwarden/internal/database"
	"chatwarden/internal/logger"
)

// AlertSink 外部告警通道的唯一抽象能力
type AlertSink interface {
	Send(text string) error
}

// maxSendAttempts 投递失败的有限重试次数，耗尽后丢弃
const maxSendAttempts = 2

// Escalator 组装人类可读的告警文本并投递到 AlertSink。
// 投递是尽力而为：失败只记日志，绝不回滚账本状态。
type Escalator struct {
	sink AlertSink
}

func NewEscalator(sink AlertSink) *Escalator {
	return &Escalator{sink: sink}
}

// OnHighSuspicion 用户累计分越过阈值
func (e *Escalator) OnHighSuspicion(userKey string, snap Snapshot) {
	b := &strings.Builder{}
	fmt.Fprintf(b, "[high suspicion] user @%s\n", userKey)
	fmt.Fprintf(b, "suspicion points: %d\n", snap.TotalPoints)
	if len(snap.LastReasons) > 0 {
		fmt.Fprintf(b, "recent reasons: %s", strings.Join(snap.LastReasons, ", "))
	}
	e.deliver(b.String())
}

// OnSuspiciousContent 消息命中敏感词
func (e *Escalator) OnSuspiciousContent(ev database.SecurityEvent, text string) {
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	e.deliver(fmt.Sprintf(
		"[suspicious message] author: %s\nmessage: %s\ntime: %s",
		ev.UserName, text, ev.Timestamp.Format("15:04:05"),
	))
}

// OnSpamDetected 检测到刷屏
func (e *Escalator) OnSpamDetected(ev database.SecurityEvent) {
	e.deliver(fmt.Sprintf(
		"[spam detected] author: %s\ntime: %s",
		ev.UserName, ev.Timestamp.Format("15:04:05"),
	))
}

// OnNewAccount 新注册账号入群
func (e *Escalator) OnNewAccount(ev database.SecurityEvent, age time.Duration) {
	e.deliver(fmt.Sprintf(
		"[new account] user: %s\naccount age: %d days\ntime: %s",
		ev.UserName, int(age.Hours()/24), ev.Timestamp.Format("15:04:05"),
	))
}

// deliver 有限重试的尽力投递
func (e *Escalator) deliver(text string) {
	if e.sink == nil {
		return
	}
	var err error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if err = e.sink.Send(text); err == nil {
			return
		}
		logger.Alert.Warn().Err(err).Int("attempt", attempt).Msg("告警投递失败")
	}
	logger.Alert.Error().Err(err).Msg("告警投递重试耗尽，已丢弃")
}
