package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"

	pkgerrors "github.com/LDanielOchoa/Programacion-Areas/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	dupMsg := "Duplicate entry '123456-2026-03-10-Lavado-07:00 - 15:00' for key 'programacion_turnos.uk_turno'"

	tests := []struct {
		name      string
		err       error
		wantDup   bool
		wantEntry string
	}{
		{"nil", nil, false, ""},
		{"唯一键冲突", &mysql.MySQLError{Number: 1062, Message: dupMsg}, true, "123456-2026-03-10-Lavado-07:00 - 15:00"},
		{"包装后的唯一键冲突", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: dupMsg}), true, "123456-2026-03-10-Lavado-07:00 - 15:00"},
		{"无法解析的冲突信息", &mysql.MySQLError{Number: 1062, Message: "dup"}, true, ""},
		{"其他 MySQL 错误", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false, ""},
		{"普通错误", errors.New("boom"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			var dup *DuplicateEntryError
			isDup := errors.As(got, &dup)
			if isDup != tt.wantDup {
				t.Fatalf("期望 dup=%v，实际 %v (%v)", tt.wantDup, isDup, got)
			}
			if !isDup {
				if got != tt.err {
					t.Errorf("非冲突错误应原样返回，实际 %v", got)
				}
				return
			}
			if dup.Entry != tt.wantEntry {
				t.Errorf("Entry = %q, 期望 %q", dup.Entry, tt.wantEntry)
			}
			if !errors.Is(got, pkgerrors.ErrDuplicateRecord) {
				t.Error("应匹配 ErrDuplicateRecord")
			}
		})
	}
}
