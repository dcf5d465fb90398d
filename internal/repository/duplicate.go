package repository

import (
	"errors"
	"regexp"

	"github.com/go-sql-driver/mysql"

	pkgerrors "github.com/LDanielOchoa/Programacion-Areas/pkg/errors"
)

// mysqlDuplicateEntry ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

var duplicateEntryPattern = regexp.MustCompile(`Duplicate entry '(.+)' for key`)

// DuplicateEntryError 违反唯一键；Entry 为 MySQL 报告的冲突值
type DuplicateEntryError struct {
	Entry string
	Err   error
}

func (e *DuplicateEntryError) Error() string {
	if e.Entry == "" {
		return e.Err.Error()
	}
	return "唯一键冲突: " + e.Entry
}

func (e *DuplicateEntryError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, pkgerrors.ErrDuplicateRecord) 成立
func (e *DuplicateEntryError) Is(target error) bool {
	return target == pkgerrors.ErrDuplicateRecord
}

// translateError 把 MySQL 唯一键错误转换为 *DuplicateEntryError，其余原样返回
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	dup := &DuplicateEntryError{Err: err}
	if m := duplicateEntryPattern.FindStringSubmatch(me.Message); m != nil {
		dup.Entry = m[1]
	}
	return dup
}
