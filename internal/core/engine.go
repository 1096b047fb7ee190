package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"chatwarden/internal/botconfig"
	"chatwarden/internal/constants"
	"chatwarden/internal/database"
	"chatwarden/internal/eventlog"
	"chatwarden/internal/logger"
	"chatwarden/internal/security"

	"github.com/google/uuid"
)

// InboundMessage 平台接入层送入的一条消息
type InboundMessage struct {
	UserID    int64
	Username  string
	UserName  string // display name at time of event
	ChatID    int64
	MessageID int64
	Text      string
}

// NewMember 平台接入层送入的新成员信息
type NewMember struct {
	UserID    int64
	Username  string
	UserName  string
	ChatID    int64
	CreatedAt time.Time // platform-reported account creation instant
}

// Result 一条消息的处理结果
type Result struct {
	Classifications []string
	Escalated       bool
}

// Stats 引擎统计视图
type Stats struct {
	TotalEvents  int64
	TrackedUsers int
	TopTypes     []eventlog.TypeCount
}

// Engine 风险评分与事件日志引擎的对外门面。
// 平台接入（收发消息、权限检查、命令解析）由外部协作方完成，只调用这里的方法。
type Engine struct {
	mu     sync.RWMutex // guards cfg + filter
	cfg    botconfig.Config
	filter *security.Filter

	ledger    *security.Ledger
	escalator *security.Escalator
	log       *eventlog.Log
	events    *database.EventRepo
	messages  *database.MessageRepo
	clock     Clock
}

func New(cfg botconfig.Config, sink security.AlertSink, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	e := &Engine{
		cfg:       cfg,
		filter:    security.NewFilter(cfg.Moderation.BlockedWords),
		ledger:    security.NewLedger(ledgerOptions(cfg)),
		escalator: security.NewEscalator(sink),
		log:       eventlog.New(constants.EventLogCapacity),
		events:    database.NewEventRepo(),
		messages:  database.NewMessageRepo(),
		clock:     clock,
	}
	e.ledger.SetHandler(e)
	return e
}

func ledgerOptions(cfg botconfig.Config) security.Options {
	return security.Options{
		SuspiciousThreshold: cfg.Moderation.SuspiciousThreshold,
		SpamThreshold:       cfg.Moderation.SpamThreshold,
		SpamWindow:          cfg.SpamWindow(),
		ReasonHistoryLimit:  cfg.Moderation.ReasonHistoryLimit,
		EscalationPolicy:    cfg.Moderation.EscalationPolicy,
	}
}

// OnHighSuspicion 实现 security.HighSuspicionHandler：
// 记录 HIGH_SUSPICION 事件并投递告警。由账本在 AddSuspicion 返回前同步触发。
func (e *Engine) OnHighSuspicion(userKey string, snap security.Snapshot) {
	ev := database.SecurityEvent{
		EventID:     uuid.NewString(),
		Timestamp:   e.clock.Now(),
		UserName:    userKey,
		EventType:   constants.EventHighSuspicion,
		Description: fmt.Sprintf("user @%s reached %d suspicion points", userKey, snap.TotalPoints),
		Level:       constants.LevelCritical,
	}
	e.record(&ev)
	e.escalator.OnHighSuspicion(userKey, snap)
}

// IngestMessage 处理一条入站消息：内容分类、刷屏检测、扣分与事件记录。
// 内存状态先行更新并保持一致；持久化失败通过返回错误上报，不回滚。
func (e *Engine) IngestMessage(msg InboundMessage) (Result, error) {
	now := e.clock.Now()
	key := security.UserKey(msg.UserID, msg.Username)

	e.mu.RLock()
	filter := e.filter
	autoMod := e.cfg.Moderation.AutoModeration
	e.mu.RUnlock()

	var res Result
	var storageErr error

	// 原始消息落库（按 message_id 覆盖，跟踪编辑）
	if err := e.messages.Upsert(&database.Message{
		MessageID: msg.MessageID,
		UserID:    msg.UserID,
		UserName:  msg.UserName,
		ChatID:    msg.ChatID,
		Content:   msg.Text,
		Timestamp: now,
	}); err != nil {
		storageErr = err
	}

	if filter.Classify(msg.Text) {
		res.Classifications = append(res.Classifications, constants.ReasonSuspiciousContent)

		ev := e.newMessageEvent(msg, constants.EventSuspiciousContent, constants.LevelMedium,
			fmt.Sprintf("message matched blocked word list: %s", truncate(msg.Text, 80)), now)
		if err := e.record(&ev); err != nil && storageErr == nil {
			storageErr = err
		}
		e.escalator.OnSuspiciousContent(ev, msg.Text)

		if autoMod {
			_, escalated, err := e.ledger.AddSuspicion(key, constants.ReasonSuspiciousContent,
				constants.PointsSuspiciousContent, now)
			if err != nil {
				return res, ErrInvalidPoints.Wrap(err)
			}
			res.Escalated = res.Escalated || escalated
		}
	}

	if e.ledger.CheckAndRecord(key, now) {
		res.Classifications = append(res.Classifications, constants.ReasonSpam)

		ev := e.newMessageEvent(msg, constants.EventSpam, constants.LevelHigh,
			fmt.Sprintf("user @%s exceeded message rate limit", key), now)
		if err := e.record(&ev); err != nil && storageErr == nil {
			storageErr = err
		}
		e.escalator.OnSpamDetected(ev)

		if autoMod {
			_, escalated, err := e.ledger.AddSuspicion(key, constants.ReasonSpam,
				constants.PointsSpam, now)
			if err != nil {
				return res, ErrInvalidPoints.Wrap(err)
			}
			res.Escalated = res.Escalated || escalated
		}
	}

	if storageErr != nil {
		return res, ErrStorage.Wrap(storageErr)
	}
	return res, nil
}

// IngestNewMember 新成员入群检查：账号年龄不足 7 天时产生 NEW_ACCOUNT 事件并告警。
// 年龄本身不扣分。
func (e *Engine) IngestNewMember(m NewMember) (*database.SecurityEvent, error) {
	now := e.clock.Now()
	age := now.Sub(m.CreatedAt)

	if age.Hours() >= 24*constants.NewAccountMaxAgeDays {
		return nil, nil
	}

	chatID := m.ChatID
	ev := database.SecurityEvent{
		EventID:     uuid.NewString(),
		Timestamp:   now,
		UserID:      m.UserID,
		UserName:    m.UserName,
		EventType:   constants.EventNewAccount,
		Description: fmt.Sprintf("account age %d days", int(age.Hours()/24)),
		Level:       constants.LevelMedium,
		ChatID:      &chatID,
	}
	err := e.record(&ev)
	e.escalator.OnNewAccount(ev, age)

	if err != nil {
		return &ev, ErrStorage.Wrap(err)
	}
	return &ev, nil
}

// ManualAction 人工处置：warn 加 2 分，ban 加 5 分，各自产生一条安全事件
func (e *Engine) ManualAction(userKey, kind, reason, actor string) (*database.SecurityEvent, error) {
	now := e.clock.Now()

	var points int
	var eventType, level, suspicionReason string
	switch kind {
	case "warn":
		points = constants.PointsManualWarning
		eventType = constants.EventManualWarning
		level = constants.LevelMedium
		suspicionReason = constants.ReasonManualWarning
	case "ban":
		points = constants.PointsManualBan
		eventType = constants.EventManualBan
		level = constants.LevelHigh
		suspicionReason = constants.ReasonManualBan
	default:
		return nil, ErrInvalidAction.Wrap(fmt.Errorf("kind %q", kind))
	}

	if _, _, err := e.ledger.AddSuspicion(userKey, suspicionReason, points, now); err != nil {
		return nil, ErrInvalidPoints.Wrap(err)
	}

	ev := database.SecurityEvent{
		EventID:     uuid.NewString(),
		Timestamp:   now,
		UserName:    userKey,
		EventType:   eventType,
		Description: fmt.Sprintf("%s by %s: %s", kind, actor, reason),
		Level:       level,
	}
	if err := e.record(&ev); err != nil {
		return &ev, ErrStorage.Wrap(err)
	}
	return &ev, nil
}

// RecordStart 记录 /start 类启动事件
func (e *Engine) RecordStart(userID int64, username, userName string, chatID int64, chatType string) error {
	now := e.clock.Now()
	cid := chatID
	ev := database.SecurityEvent{
		EventID:     uuid.NewString(),
		Timestamp:   now,
		UserID:      userID,
		UserName:    userName,
		EventType:   constants.EventStartCommand,
		Description: fmt.Sprintf("user started bot in %s", chatType),
		Level:       constants.LevelLow,
		ChatID:      &cid,
	}
	if err := e.record(&ev); err != nil {
		return ErrStorage.Wrap(err)
	}
	return nil
}

// ClearUser 清空用户的可疑记录（解封），返回是否存在过
func (e *Engine) ClearUser(userKey string) bool {
	return e.ledger.Clear(userKey)
}

// Scan 只读查看用户风险快照
func (e *Engine) Scan(userKey string) security.Snapshot {
	return e.ledger.Scan(userKey)
}

// Query 查询内存事件日志，limit 超限时收紧到 25
func (e *Engine) Query(eventType string, limit int) []database.SecurityEvent {
	return e.log.Query(eventType, limit)
}

// Stats 引擎统计：事件总量（持久化历史）、被跟踪用户数、Top5 事件类型。
// 计数并列时按类型首次出现顺序排序。
func (e *Engine) Stats() Stats {
	total, err := e.events.Count()
	if err != nil {
		// 持久化历史不可用时退回内存日志
		total = int64(e.log.Len())
	}

	counts := e.log.CountByType()
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > 5 {
		counts = counts[:5]
	}

	return Stats{
		TotalEvents:  total,
		TrackedUsers: e.ledger.Count(),
		TopTypes:     counts,
	}
}

// ReloadConfig 整体替换配置（热更新）。非法配置被拒绝，原配置保持生效。
func (e *Engine) ReloadConfig(cfg botconfig.Config) error {
	if err := cfg.Validate(); err != nil {
		return ErrInvalidConfig.Wrap(err)
	}

	e.mu.Lock()
	e.cfg = cfg
	e.filter = security.NewFilter(cfg.Moderation.BlockedWords)
	e.mu.Unlock()

	e.ledger.SetOptions(ledgerOptions(cfg))
	logger.Config.Info().Msg("配置已热更新")
	return nil
}

// Config 返回当前配置副本
func (e *Engine) Config() botconfig.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Ledger 暴露账本给周期维护任务
func (e *Engine) Ledger() *security.Ledger {
	return e.ledger
}

// EventLogLen 内存日志当前长度
func (e *Engine) EventLogLen() int {
	return e.log.Len()
}

func (e *Engine) newMessageEvent(msg InboundMessage, eventType, level, desc string, now time.Time) database.SecurityEvent {
	chatID := msg.ChatID
	messageID := msg.MessageID
	return database.SecurityEvent{
		EventID:     uuid.NewString(),
		Timestamp:   now,
		UserID:      msg.UserID,
		UserName:    msg.UserName,
		EventType:   eventType,
		Description: desc,
		Level:       level,
		ChatID:      &chatID,
		MessageID:   &messageID,
	}
}

// record 追加到内存日志并落库。内存日志为先，落库失败由调用方上报。
func (e *Engine) record(ev *database.SecurityEvent) error {
	e.log.Append(*ev)
	return e.events.Create(ev)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
