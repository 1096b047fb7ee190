package core

import "time"

// Clock 时间源，测试中可注入
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回真实时钟
func SystemClock() Clock { return systemClock{} }
