package errors

import "errors"

// ErrDuplicateRecord 违反唯一键约束，记录已存在
var ErrDuplicateRecord = errors.New("记录已存在")

// ErrDatabaseUnavailable 数据库连接失败或不可用
var ErrDatabaseUnavailable = errors.New("数据库不可用")
