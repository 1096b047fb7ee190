package output

import (
	"fmt"
)

var debugMode bool

func SetDebug(enabled bool) {
	debugMode = enabled
}

func IsDebug() bool {
	return debugMode
}

func Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}

func Println(msg string) {
	fmt.Println(msg)
}

func Debugf(format string, args ...any) {
	if !debugMode {
		return
	}
	fmt.Printf("[调试] "+format, args...)
}
