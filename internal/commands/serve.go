package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatwarden/internal/botconfig"
	"chatwarden/internal/core"
	"chatwarden/internal/database"
	"chatwarden/internal/logger"
	"chatwarden/internal/monitor"
	"chatwarden/internal/notify"
	"chatwarden/internal/version"
)

// RunServe 启动风控引擎进程。聊天平台接入层作为外部协作方
// 通过 core.Engine 的接口挂接，本进程只负责引擎本体的生命周期。
func RunServe(args []string) int {
	cfg, err := botconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		return 1
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug":
			cfg.Log.Mode = "debug"
		case "--db":
			if i+1 < len(args) {
				i++
				cfg.Database.SQLitePath = args[i]
			}
		}
	}

	logger.Init(cfg.Log)
	logger.Log.Info().
		Str("version", version.Version).
		Str("build", version.Build).
		Msg("chatwarden 启动中")

	if err := database.Init(cfg.Database, cfg.IsDebug()); err != nil {
		logger.Log.Error().Err(err).Msg("数据库初始化失败")
		return 1
	}
	defer database.Close()

	notifier := notify.NewManager()
	notifier.Reload(cfg.Alert)

	engine := core.New(cfg, notifier, core.SystemClock())

	svc := monitor.NewService(engine, cfg.Monitor.IntervalSeconds)
	go svc.Start()
	defer svc.Stop()

	logger.Log.Info().
		Int("suspicious_threshold", cfg.Moderation.SuspiciousThreshold).
		Int("spam_threshold", cfg.Moderation.SpamThreshold).
		Int("spam_window_seconds", cfg.Moderation.SpamWindowSeconds).
		Bool("auto_moderation", cfg.Moderation.AutoModeration).
		Strs("alert_channels", notifier.ChannelNames()).
		Msg("风控引擎已就绪")

	// SIGHUP 热更新配置，SIGINT/SIGTERM 退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			logger.Log.Info().Str("signal", sig.String()).Msg("chatwarden 退出")
			return 0
		}

		newCfg, err := botconfig.Load()
		if err != nil {
			logger.Config.Error().Err(err).Msg("配置重载失败，保留原配置")
			continue
		}
		if err := engine.ReloadConfig(newCfg); err != nil {
			logger.Config.Error().Err(err).Msg("配置重载被拒绝")
			continue
		}
		notifier.Reload(newCfg.Alert)
	}
	return 0
}
