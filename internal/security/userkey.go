package security

import (
	"strconv"
	"strings"
)

// UserKey 规范化用户键：优先使用平台用户名，缺失时回退为数字 ID 的字符串形式。
// 全局唯一的键派生入口，各组件不得各自实现。
func UserKey(id int64, username string) string {
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	return strconv.FormatInt(id, 10)
}
