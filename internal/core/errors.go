package core

import (
	"fmt"
)

// CoreError 结构化引擎错误，带机器可读错误码。
// 未知用户不是错误：查询/清除对未知键返回空结果。
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CoreError) Unwrap() error { return e.Err }

// Is 让 errors.Is 按错误码匹配哨兵值
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	return ok && t.Code == e.Code
}

// Wrap 返回携带底层错误的副本
func (e *CoreError) Wrap(err error) *CoreError {
	return &CoreError{Code: e.Code, Message: e.Message, Err: err}
}

var (
	ErrInvalidPoints = &CoreError{Code: "INVALID_INPUT", Message: "suspicion points must be positive"}
	ErrInvalidAction = &CoreError{Code: "INVALID_INPUT", Message: "unknown moderation action kind"}
	ErrInvalidConfig = &CoreError{Code: "INVALID_INPUT", Message: "invalid configuration"}
	ErrStorage       = &CoreError{Code: "STORAGE_FAILURE", Message: "durable write failed"}
	ErrDelivery      = &CoreError{Code: "DELIVERY_FAILURE", Message: "alert delivery failed"}
)
