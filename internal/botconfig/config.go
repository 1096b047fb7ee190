package botconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type ModerationConfig struct {
	SuspiciousThreshold int      `json:"suspicious_threshold"`
	SpamThreshold       int      `json:"spam_threshold"`
	SpamWindowSeconds   int      `json:"spam_window_seconds"`
	BlockedWords        []string `json:"blocked_words"`
	AutoModeration      bool     `json:"auto_moderation"`
	ReasonHistoryLimit  int      `json:"reason_history_limit"`
	EscalationPolicy    string   `json:"escalation_policy"`
}

type DatabaseConfig struct {
	Driver      string `json:"driver"`
	SQLitePath  string `json:"sqlite_path"`
	PostgresDSN string `json:"postgres_dsn"`
}

type LogConfig struct {
	Level      string `json:"level"`
	Mode       string `json:"mode"`
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

type AlertConfig struct {
	Enabled          bool   `json:"enabled"`
	TelegramToken    string `json:"telegram_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
	DiscordToken     string `json:"discord_token"`
	DiscordChannelID string `json:"discord_channel_id"`
	SlackToken       string `json:"slack_token"`
	SlackChannelID   string `json:"slack_channel_id"`
	WebhookURL       string `json:"webhook_url"`
}

type MonitorConfig struct {
	IntervalSeconds int `json:"interval_seconds"`
}

type Config struct {
	Moderation ModerationConfig `json:"moderation"`
	Database   DatabaseConfig   `json:"database"`
	Log        LogConfig        `json:"log"`
	Alert      AlertConfig      `json:"alert"`
	Monitor    MonitorConfig    `json:"monitor"`
}

// defaultDataDir 返回 chatwarden 自身的数据目录（存放 chatwarden.db/json/log）
func defaultDataDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "./data"
	}
	return filepath.Join(filepath.Dir(exe), "data")
}

// DefaultBlockedWords 内置敏感词（可在配置中覆盖）
func DefaultBlockedWords() []string {
	return []string{
		"hack", "cheat", "exploit", "crack", "bypass",
		"ddos", "bot", "script", "auto", "macro",
	}
}

func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Moderation: ModerationConfig{
			SuspiciousThreshold: 3,
			SpamThreshold:       5,
			SpamWindowSeconds:   10,
			BlockedWords:        DefaultBlockedWords(),
			AutoModeration:      true,
			ReasonHistoryLimit:  100,
			EscalationPolicy:    "every",
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(dataDir, "chatwarden.db"),
		},
		Log: LogConfig{
			Level:      "info",
			Mode:       "production",
			FilePath:   filepath.Join(dataDir, "chatwarden.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Alert: AlertConfig{
			Enabled: false,
		},
		Monitor: MonitorConfig{
			IntervalSeconds: 60,
		},
	}
}

func ConfigPath() string {
	if custom := strings.TrimSpace(os.Getenv("CW_CONFIG")); custom != "" {
		return custom
	}
	return filepath.Join(defaultDataDir(), "chatwarden.json")
}

func Load() (Config, error) {
	cfg := Default()

	// Layer 1: config file
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil && len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Default(), err
		}
	}

	// Layer 2: environment variables override
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func Save(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Validate 校验审核参数，非法配置整体拒绝
func (c *Config) Validate() error {
	m := c.Moderation
	if m.SuspiciousThreshold <= 0 {
		return fmt.Errorf("suspicious_threshold must be positive, got %d", m.SuspiciousThreshold)
	}
	if m.SpamThreshold <= 0 {
		return fmt.Errorf("spam_threshold must be positive, got %d", m.SpamThreshold)
	}
	if m.SpamWindowSeconds <= 0 {
		return fmt.Errorf("spam_window_seconds must be positive, got %d", m.SpamWindowSeconds)
	}
	if m.ReasonHistoryLimit < 0 {
		return fmt.Errorf("reason_history_limit must not be negative, got %d", m.ReasonHistoryLimit)
	}
	switch m.EscalationPolicy {
	case "", "every", "crossing":
	default:
		return fmt.Errorf("unknown escalation_policy: %s", m.EscalationPolicy)
	}
	return nil
}

// SpamWindow 返回滑动窗口时长
func (c *Config) SpamWindow() time.Duration {
	return time.Duration(c.Moderation.SpamWindowSeconds) * time.Second
}

func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.Log.Mode, "debug")
}

// BlockedWordsLower 返回小写化后的敏感词列表
func (c *Config) BlockedWordsLower() []string {
	out := make([]string, 0, len(c.Moderation.BlockedWords))
	for _, w := range c.Moderation.BlockedWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CW_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("CW_DB_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CW_DB_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("CW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CW_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("CW_LOG_FILE"); v != "" {
		cfg.Log.FilePath = v
	}
	if v := os.Getenv("CW_SUSPICIOUS_THRESHOLD"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Moderation.SuspiciousThreshold = p
		}
	}
	if v := os.Getenv("CW_SPAM_THRESHOLD"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Moderation.SpamThreshold = p
		}
	}
	if v := os.Getenv("CW_SPAM_WINDOW"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Moderation.SpamWindowSeconds = p
		}
	}
	if v := os.Getenv("CW_AUTO_MODERATION"); v != "" {
		cfg.Moderation.AutoModeration = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CW_ESCALATION_POLICY"); v != "" {
		cfg.Moderation.EscalationPolicy = v
	}
	if v := os.Getenv("CW_ALERT_ENABLED"); v != "" {
		cfg.Alert.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CW_ALERT_TELEGRAM_TOKEN"); v != "" {
		cfg.Alert.TelegramToken = v
	}
	if v := os.Getenv("CW_ALERT_TELEGRAM_CHAT_ID"); v != "" {
		cfg.Alert.TelegramChatID = v
	}
	if v := os.Getenv("CW_ALERT_WEBHOOK_URL"); v != "" {
		cfg.Alert.WebhookURL = v
	}
	if v := os.Getenv("CW_MONITOR_INTERVAL"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.IntervalSeconds = p
		}
	}
}
