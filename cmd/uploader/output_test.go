package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/normalizer"
	"github.com/LDanielOchoa/Programacion-Areas/internal/orchestrator"
	"github.com/LDanielOchoa/Programacion-Areas/internal/reconcile"
	"github.com/LDanielOchoa/Programacion-Areas/internal/validator"
)

func TestAskConfirm(t *testing.T) {
	collision := &orchestrator.DateCollisionError{Area: dto.AreaLavado, Dates: []string{"2026-03-10"}}
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Sí\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := askConfirm(strings.NewReader(tt.input), &out, collision); got != tt.want {
			t.Errorf("输入 %q 期望 %v，实际 %v", tt.input, tt.want, got)
		}
		if !strings.Contains(out.String(), "2026-03-10") {
			t.Errorf("提示中应包含冲突日期，实际: %q", out.String())
		}
	}
}

func TestPrintError_ValidationTable(t *testing.T) {
	var out bytes.Buffer
	printError(&out, &orchestrator.ValidationFailedError{Errors: []validator.ValidationError{
		{Cell: "E13", Value: "7:30 - 15:30", Message: "Formato de turno inválido", Suggestion: "07:30 - 15:30"},
	}})

	s := out.String()
	for _, want := range []string{"E13", "7:30 - 15:30", "07:30 - 15:30", "单元格"} {
		if !strings.Contains(s, want) {
			t.Errorf("输出缺少 %q: %s", want, s)
		}
	}
}

func TestPrintError_AuthHint(t *testing.T) {
	var out bytes.Buffer
	err := &orchestrator.PersistenceError{Class: reconcile.ClassAuth, Err: &reconcile.APIError{Status: 401, Class: reconcile.ClassAuth}}
	printError(&out, err)
	if !strings.Contains(out.String(), "uploader login") {
		t.Errorf("认证失败应提示登录，实际: %s", out.String())
	}

	out.Reset()
	printError(&out, errors.New("boom"))
	if strings.Count(out.String(), "\n") != 1 {
		t.Errorf("普通错误只输出一行，实际: %q", out.String())
	}
}

func TestPrintError_UnresolvedHeaders(t *testing.T) {
	var out bytes.Buffer
	printError(&out, &normalizer.UnresolvedDateHeaderError{Headers: []string{"semana", "lunes"}})

	s := out.String()
	for _, want := range []string{"DD/MM/AAAA", `"semana"`, `"lunes"`} {
		if !strings.Contains(s, want) {
			t.Errorf("输出缺少 %q: %s", want, s)
		}
	}
}

func TestRequireArea(t *testing.T) {
	defer func(old string) { areaFlag = old }(areaFlag)

	areaFlag = "vigilantes"
	if a, err := requireArea(); err != nil || a != dto.AreaVigilantes {
		t.Errorf("期望 Vigilantes，实际 %q %v", a, err)
	}
	areaFlag = "cocina"
	if _, err := requireArea(); err == nil {
		t.Error("未知区域应报错")
	}
	areaFlag = ""
	if _, err := requireArea(); err == nil {
		t.Error("缺少区域应报错")
	}
}
