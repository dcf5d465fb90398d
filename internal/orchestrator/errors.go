package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/reconcile"
	"github.com/LDanielOchoa/Programacion-Areas/internal/validator"
)

// ErrSaveInProgress 同一实例上已有保存在进行
var ErrSaveInProgress = errors.New("已有保存操作正在进行，请稍候")

// ValidationFailedError 完整校验发现错误，必须全部修正后才能保存
type ValidationFailedError struct {
	Errors []validator.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("排班表存在 %d 处错误，请修正后再保存", len(e.Errors))
}

// EmployeeMismatchError 部分员工不在人员登记库中
type EmployeeMismatchError struct {
	Employees []dto.EmployeeIdentity
}

func (e *EmployeeMismatchError) Error() string {
	ids := make([]string, 0, len(e.Employees))
	for _, emp := range e.Employees {
		ids = append(ids, emp.Cedula)
	}
	return fmt.Sprintf("%d 名员工未在人员库中找到: %s", len(e.Employees), strings.Join(ids, ", "))
}

// DateCollisionError 区域在这些日期已有排班；确认后可重新发起保存
type DateCollisionError struct {
	Area  dto.AreaType
	Dates []string
}

func (e *DateCollisionError) Error() string {
	return fmt.Sprintf("区域 %s 在以下日期已有排班: %s", e.Area, strings.Join(e.Dates, ", "))
}

// DuplicateRecordError 后端报告唯一键冲突
type DuplicateRecordError struct {
	Detail string
}

func (e *DuplicateRecordError) Error() string {
	if e.Detail == "" {
		return "记录重复"
	}
	return "记录重复: " + e.Detail
}

// PersistenceError 保存请求失败（网络、超时、校验或服务器错误）
type PersistenceError struct {
	Class   reconcile.ErrorClass
	Status  int
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Message != "" {
		return "保存失败: " + e.Message
	}
	return fmt.Sprintf("保存失败: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// classifySaveError 把保存接口的错误区分为重复冲突与其他持久化失败
func classifySaveError(err error) error {
	var ae *reconcile.APIError
	if !errors.As(err, &ae) {
		return &PersistenceError{Class: reconcile.ClassTransport, Err: err}
	}
	if ae.Class == reconcile.ClassConflict {
		return &DuplicateRecordError{Detail: ae.Details}
	}
	msg := ae.Message
	if ae.Details != "" {
		msg = ae.Message + ": " + ae.Details
	}
	if ae.Class == reconcile.ClassTransport {
		msg = ""
	}
	return &PersistenceError{Class: ae.Class, Status: ae.Status, Message: msg, Err: ae}
}
