package reconcile

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass 接口失败的类别，调用方据此选择处理分支
type ErrorClass string

const (
	ClassValidation ErrorClass = "validation" // 400
	ClassAuth       ErrorClass = "auth"       // 401 / 403
	ClassConflict   ErrorClass = "conflict"   // 409
	ClassServer     ErrorClass = "server"     // 5xx 及其他非 2xx
	ClassTransport  ErrorClass = "transport"  // 网络不可达、超时、响应无法解析
)

// APIError 后端接口调用失败
type APIError struct {
	Status         int
	Class          ErrorClass
	Message        string
	Details        string
	InvalidRecords []string
	RecordIndex    *int
	Err            error
}

func (e *APIError) Error() string {
	switch {
	case e.Class == ClassTransport && e.Err != nil:
		return fmt.Sprintf("无法连接后端: %v", e.Err)
	case e.Details != "":
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("后端返回 HTTP %d", e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// IsConflict 是否为唯一键冲突
func IsConflict(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Class == ClassConflict
}

func classify(status int) ErrorClass {
	switch {
	case status == http.StatusBadRequest:
		return ClassValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ClassAuth
	case status == http.StatusConflict:
		return ClassConflict
	default:
		return ClassServer
	}
}
