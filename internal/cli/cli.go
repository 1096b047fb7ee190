package cli

import (
	"fmt"
	"strings"

	"chatwarden/internal/commands"
	"chatwarden/internal/output"
	"chatwarden/internal/version"
)

func Run(args []string) int {
	if len(args) < 2 {
		return commands.RunServe(nil)
	}

	switch args[1] {
	case "-h", "--help", "help":
		output.Println(usage())
		return 0
	case "-v", "--version", "version":
		output.Printf("chatwarden %s (build %s)\n", version.Version, version.Build)
		return 0
	case "serve":
		return commands.RunServe(args[2:])
	case "settings":
		return handleSettings(args[2:])
	default:
		// 其余参数直接传给 serve
		return commands.RunServe(args[1:])
	}
}

func handleSettings(args []string) int {
	if len(args) == 0 {
		output.Println(settingsUsage())
		return 2
	}
	switch args[0] {
	case "show":
		return commands.SettingsShow(args[1:])
	case "set-mode":
		return commands.SettingsSetMode(args[1:])
	default:
		output.Printf("未知 settings 子命令: %s\n\n", args[0])
		output.Println(settingsUsage())
		return 2
	}
}

func settingsUsage() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "用法:")
	fmt.Fprintln(b, "  chatwarden settings <子命令> [参数]")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "子命令:")
	fmt.Fprintln(b, "  show      显示当前 chatwarden 配置")
	fmt.Fprintln(b, "  set-mode  设置模式（production/debug）")
	return b.String()
}

func usage() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "chatwarden - 聊天风控引擎")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "用法:")
	fmt.Fprintln(b, "  chatwarden [参数]              启动风控引擎")
	fmt.Fprintln(b, "  chatwarden serve [参数]")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "参数:")
	fmt.Fprintln(b, "      --db PATH         指定 SQLite 数据库路径")
	fmt.Fprintln(b, "      --debug           启用调试模式")
	fmt.Fprintln(b, "  -h, --help            显示帮助")
	fmt.Fprintln(b, "  -v, --version         显示版本")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "辅助命令:")
	fmt.Fprintln(b, "  settings         查看/设置运行模式")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "信号:")
	fmt.Fprintln(b, "  SIGHUP            热更新配置文件")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "配置文件路径由 CW_CONFIG 环境变量指定，默认 <可执行文件目录>/data/chatwarden.json")
	return b.String()
}
