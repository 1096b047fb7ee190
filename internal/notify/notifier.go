package notify

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"chatwarden/internal/botconfig"
	"chatwarden/internal/logger"

	nfy "github.com/nikoksr/notify"
	nfydc "github.com/nikoksr/notify/service/discord"
	nfyhttp "github.com/nikoksr/notify/service/http"
	nfyslack "github.com/nikoksr/notify/service/slack"
	nfytg "github.com/nikoksr/notify/service/telegram"
)

// sendTimeout 单次投递超时，投递不允许无限阻塞
const sendTimeout = 5 * time.Second

// Manager wraps nikoksr/notify.Notify and manages channel lifecycle.
// 实现 security.AlertSink。
type Manager struct {
	mu           sync.RWMutex
	notifier     *nfy.Notify
	channelNames []string
}

// NewManager creates an empty notification manager.
func NewManager() *Manager {
	return &Manager{
		notifier: nfy.New(),
	}
}

// Reload rebuilds notification channels from the alert config.
func (m *Manager) Reload(cfg botconfig.AlertConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Create a fresh notifier instance (drops old services)
	n := nfy.New()
	var names []string

	if !cfg.Enabled {
		m.notifier = n
		m.channelNames = nil
		logger.Alert.Info().Msg("告警通道未启用")
		return
	}

	// ── Telegram (via nikoksr/notify/service/telegram) ──
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		tgSvc, err := nfytg.New(cfg.TelegramToken)
		if err == nil {
			// AddReceivers accepts int64 chat IDs
			if id, err := strconv.ParseInt(strings.TrimSpace(cfg.TelegramChatID), 10, 64); err == nil {
				tgSvc.AddReceivers(id)
				n.UseServices(tgSvc)
				names = append(names, "telegram")
			} else {
				logger.Alert.Warn().Str("chat_id", cfg.TelegramChatID).Msg("Telegram chat ID 格式无效")
			}
		} else {
			logger.Alert.Warn().Err(err).Msg("Telegram 服务初始化失败")
		}
	}

	// ── Discord (via nikoksr/notify/service/discord) ──
	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		dcSvc := nfydc.New()
		if err := dcSvc.AuthenticateWithBotToken(cfg.DiscordToken); err == nil {
			dcSvc.AddReceivers(strings.TrimSpace(cfg.DiscordChannelID))
			n.UseServices(dcSvc)
			names = append(names, "discord")
		} else {
			logger.Alert.Warn().Err(err).Msg("Discord 服务初始化失败")
		}
	}

	// ── Slack (via nikoksr/notify/service/slack) ──
	if cfg.SlackToken != "" && cfg.SlackChannelID != "" {
		slackSvc := nfyslack.New(cfg.SlackToken)
		slackSvc.AddReceivers(strings.TrimSpace(cfg.SlackChannelID))
		n.UseServices(slackSvc)
		names = append(names, "slack")
	}

	// ── Webhook (via nikoksr/notify/service/http) ──
	if cfg.WebhookURL != "" {
		httpSvc := nfyhttp.New()
		httpSvc.AddReceivers(&nfyhttp.Webhook{
			URL:         cfg.WebhookURL,
			Header:      http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
			ContentType: "text/plain; charset=utf-8",
			Method:      "POST",
			BuildPayload: func(subject, message string) (payload any) {
				return subject + "\n" + message
			},
		})
		n.UseServices(httpSvc)
		names = append(names, "webhook")
	}

	m.notifier = n
	m.channelNames = names

	logger.Alert.Info().Int("channels", len(names)).Strs("names", names).Msg("告警通道已重载 (nikoksr/notify)")
}

// Send dispatches a message to all configured channels with a bounded timeout.
func (m *Manager) Send(text string) error {
	m.mu.RLock()
	n := m.notifier
	m.mu.RUnlock()

	if n == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := n.Send(ctx, "chatwarden", text); err != nil {
		logger.Alert.Warn().Err(err).Msg("通知发送失败")
		return err
	}
	return nil
}

// HasChannels returns true if at least one channel is configured.
func (m *Manager) HasChannels() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channelNames) > 0
}

// ChannelNames returns the names of all configured channels.
func (m *Manager) ChannelNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, len(m.channelNames))
	copy(result, m.channelNames)
	return result
}
