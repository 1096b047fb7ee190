package constants

// Security levels
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

var AllLevels = []string{LevelLow, LevelMedium, LevelHigh, LevelCritical}

// Event types (开放枚举，存储层原样接受未知类型)
const (
	EventStartCommand      = "START_COMMAND"
	EventSuspiciousContent = "SUSPICIOUS_CONTENT"
	EventSpam              = "SPAM"
	EventManualWarning     = "MANUAL_WARNING"
	EventManualBan         = "MANUAL_BAN"
	EventHighSuspicion     = "HIGH_SUSPICION"
	EventNewAccount        = "NEW_ACCOUNT"
)

// Suspicion reasons
const (
	ReasonSuspiciousContent = "suspicious_content"
	ReasonSpam              = "spam"
	ReasonManualWarning     = "manual_warning"
	ReasonManualBan         = "manual_ban"
)

// 人工处置的固定扣分
const (
	PointsSuspiciousContent = 1
	PointsSpam              = 2
	PointsManualWarning     = 2
	PointsManualBan         = 5
)

// Scan 状态档位（仅用于展示，与告警阈值无关）
const (
	StatusSafe       = "safe"
	StatusSuspicious = "suspicious"
	StatusDangerous  = "dangerous"
)

// Escalation policies
const (
	EscalateEveryAdd = "every"
	EscalateCrossing = "crossing"
)

// EventLogCapacity 内存事件环形缓冲区容量
const EventLogCapacity = 1000

// QueryLimitMax 单次日志查询上限（服务端强制收紧）
const QueryLimitMax = 25

// NewAccountMaxAgeDays 新账号告警阈值（天）
const NewAccountMaxAgeDays = 7
