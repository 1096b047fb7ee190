package commands

import (
	"flag"
	"fmt"
	"strings"

	"chatwarden/internal/botconfig"
	"chatwarden/internal/output"
)

// SettingsShow 打印当前生效的配置概要。
func SettingsShow(args []string) int {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		output.Printf("错误: %s\n", err)
		return 2
	}

	cfg, err := botconfig.Load()
	if err != nil {
		output.Printf("错误: 读取配置失败: %s\n", err)
		return 1
	}
	output.Println("chatwarden 配置")
	fmt.Printf("路径: %s\n", botconfig.ConfigPath())
	fmt.Printf("模式: %s\n", cfg.Log.Mode)
	fmt.Printf("调试输出: %t\n", cfg.IsDebug())
	fmt.Printf("自动处置: %t\n", cfg.Moderation.AutoModeration)
	fmt.Printf("可疑阈值: %d\n", cfg.Moderation.SuspiciousThreshold)
	fmt.Printf("刷屏阈值: %d 条 / %d 秒\n", cfg.Moderation.SpamThreshold, cfg.Moderation.SpamWindowSeconds)
	fmt.Printf("升级策略: %s\n", cfg.Moderation.EscalationPolicy)
	fmt.Printf("屏蔽词数: %d\n", len(cfg.Moderation.BlockedWords))
	return 0
}

// SettingsSetMode 设置运行模式并写回配置文件。
func SettingsSetMode(args []string) int {
	fs := flag.NewFlagSet("settings set-mode", flag.ContinueOnError)
	mode := fs.String("mode", "production", "模式: production 或 debug")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		output.Printf("错误: %s\n", err)
		return 2
	}

	input := strings.ToLower(strings.TrimSpace(*mode))
	if input != "production" && input != "debug" {
		output.Println("错误: mode 仅支持 production 或 debug")
		return 2
	}

	cfg, err := botconfig.Load()
	if err != nil {
		output.Printf("错误: 读取配置失败: %s\n", err)
		return 1
	}
	cfg.Log.Mode = input
	if err := botconfig.Save(cfg); err != nil {
		output.Printf("错误: 保存配置失败: %s\n", err)
		return 1
	}
	output.SetDebug(cfg.IsDebug())
	output.Printf("已设置模式: %s\n", cfg.Log.Mode)
	return 0
}
