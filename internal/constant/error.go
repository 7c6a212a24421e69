package constant

import (
	"errors"
	"fmt"
	"net/http"
)

// Error 错误接口
type Error interface {
	error
	Code() int
	Kind() string
	Status() int
	Message() string
	WithData(data interface{}) Error
}

// CustomError 自定义错误实现
type CustomError struct {
	code    int
	message string
	cause   error
	data    interface{}
}

func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("code: %d, message: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("code: %d, message: %s", e.code, e.message)
}

func (e *CustomError) Unwrap() error {
	return e.cause
}

func (e *CustomError) Code() int {
	return e.code
}

func (e *CustomError) Kind() string {
	if info, ok := ErrorMessages[e.code]; ok {
		return info.Kind
	}
	return KindSystem
}

func (e *CustomError) Status() int {
	if info, ok := ErrorMessages[e.code]; ok {
		return info.Status
	}
	return http.StatusInternalServerError
}

func (e *CustomError) Message() string {
	return e.message
}

func (e *CustomError) Data() interface{} {
	return e.data
}

func (e *CustomError) WithData(data interface{}) Error {
	e.data = data
	return e
}

// NewError 创建错误
func NewError(code int) Error {
	if info, exists := ErrorMessages[code]; exists {
		return &CustomError{code: code, message: info.EN}
	}
	return &CustomError{code: code, message: "Unknown error"}
}

// Errorf 自定义描述
func Errorf(code int, format string, args ...interface{}) Error {
	return &CustomError{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap 保留底层错误，errors.Is / errors.As 可以穿透
func Wrap(code int, cause error) Error {
	e := NewError(code).(*CustomError)
	e.cause = cause
	return e
}

// Wrapf 同 Wrap，附带自定义描述
func Wrapf(code int, cause error, format string, args ...interface{}) Error {
	return &CustomError{code: code, message: fmt.Sprintf(format, args...), cause: cause}
}

// GetErrorInfo 获取错误信息
func GetErrorInfo(code int) (ErrorInfo, bool) {
	info, exists := ErrorMessages[code]
	return info, exists
}

// AsError 取出链上第一个 CustomError
func AsError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// CodeOf 非 CustomError 一律视为系统错误
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	if ce, ok := AsError(err); ok {
		return ce.code
	}
	return CodeSystemError
}

// KindOf 返回错误分类
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := AsError(err); ok {
		return ce.Kind()
	}
	return KindSystem
}

// IsKind 判断错误分类
func IsKind(err error, kind string) bool {
	return err != nil && KindOf(err) == kind
}
