package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/session"
)

// ── 测试辅助 ──

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	return New(Options{BaseURL: srv.URL + "/", Sessions: store, Logger: zap.NewNop()}), store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var employees = []dto.EmployeeIdentity{
	{Cedula: "123456", Nombre: "Jane Doe"},
	{Cedula: "654321", Nombre: "John Roe"},
}

// ── 员工校验 ──

func TestValidateEmployees_Mismatch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/validate-employees" || r.Method != http.MethodPost {
			t.Errorf("请求路径错误: %s %s", r.Method, r.URL.Path)
		}
		var req dto.ValidateEmployeesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("请求体解析失败: %v", err)
		}
		if len(req.Employees) != 2 {
			t.Errorf("期望去重后 2 名员工，实际 %d", len(req.Employees))
		}
		writeJSON(w, http.StatusOK, dto.ValidateEmployeesResponse{
			IsValid:          false,
			InvalidEmployees: []dto.EmployeeIdentity{{Cedula: "654321", Nombre: "John Roe"}},
			Meta:             dto.ValidationMeta{TotalChecked: 2, ValidCount: 1, InvalidCount: 1},
		})
	})

	dup := append(employees, dto.EmployeeIdentity{Cedula: "123.456", Nombre: "Jane"})
	res, err := c.ValidateEmployees(context.Background(), dup)
	if err != nil {
		t.Fatalf("ValidateEmployees 失败: %v", err)
	}
	if res.IsValid || len(res.InvalidEmployees) != 1 || res.InvalidEmployees[0].Cedula != "654321" {
		t.Errorf("结果错误: %+v", res)
	}
	if res.Meta.TotalChecked != 2 || res.Meta.InvalidCount != 1 {
		t.Errorf("统计错误: %+v", res.Meta)
	}
}

func TestValidateEmployees_FailOpenOnServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Error en validación"})
	})

	res, err := c.ValidateEmployees(context.Background(), employees)
	if err != nil {
		t.Fatalf("5xx 应放行，实际错误: %v", err)
	}
	if !res.IsValid || len(res.InvalidEmployees) != 0 {
		t.Errorf("期望 {isValid:true, invalidEmployees:[]}，实际 %+v", res)
	}
}

func TestValidateEmployees_FailOpenOnUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url})
	res, err := c.ValidateEmployees(context.Background(), employees)
	if err != nil || !res.IsValid {
		t.Errorf("不可达时应放行，实际 %+v %v", res, err)
	}
}

func TestValidateEmployees_BadRequestSurfaces(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "没有有效的身份证号"})
	})

	_, err := c.ValidateEmployees(context.Background(), employees)
	var ae *APIError
	if !errors.As(err, &ae) || ae.Class != ClassValidation {
		t.Errorf("400 应返回 validation 错误，实际 %v", err)
	}
}

func TestValidateEmployees_Batches(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var req dto.ValidateEmployeesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Employees) > MaxEmployeesPerRequest {
			t.Errorf("单次请求超过上限: %d", len(req.Employees))
		}
		writeJSON(w, http.StatusOK, dto.ValidateEmployeesResponse{
			IsValid:          true,
			InvalidEmployees: []dto.EmployeeIdentity{},
			Meta:             dto.ValidationMeta{TotalChecked: len(req.Employees), ValidCount: len(req.Employees)},
		})
	})

	many := make([]dto.EmployeeIdentity, 0, 2500)
	for i := 0; i < 2500; i++ {
		many = append(many, dto.EmployeeIdentity{Cedula: strconv.Itoa(100000 + i), Nombre: "X"})
	}
	res, err := c.ValidateEmployees(context.Background(), many)
	if err != nil {
		t.Fatalf("ValidateEmployees 失败: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("期望分 3 批，实际 %d", calls)
	}
	if res.Meta.TotalChecked != 2500 || !res.IsValid {
		t.Errorf("合并结果错误: %+v", res.Meta)
	}
}

// ── 日期检查 ──

func TestCheckDates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req dto.CheckDatesRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Area != "Lavado" || len(req.Dates) != 2 {
			t.Errorf("请求体错误: %+v", req)
		}
		writeJSON(w, http.StatusOK, dto.CheckDatesResponse{Exists: true, ExistingDates: []string{"2026-03-10"}})
	})

	res, err := c.CheckDates(context.Background(), []string{"2026-03-10", "2026-03-11"}, dto.AreaLavado)
	if err != nil {
		t.Fatalf("CheckDates 失败: %v", err)
	}
	if !res.Exists || len(res.ExistingDates) != 1 {
		t.Errorf("结果错误: %+v", res)
	}
}

func TestCheckDates_FailOpen(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res, err := c.CheckDates(context.Background(), []string{"2026-03-10"}, dto.AreaLavado)
	if err != nil || res.Exists {
		t.Errorf("5xx 应视为无冲突，实际 %+v %v", res, err)
	}
}

func TestCheckDates_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := New(Options{BaseURL: srv.URL, DatesTimeout: 30 * time.Millisecond})
	res, err := c.CheckDates(context.Background(), []string{"2026-03-10"}, dto.AreaLavado)
	if err != nil || res.Exists {
		t.Errorf("超时应视为无冲突，实际 %+v %v", res, err)
	}
}

// ── 保存 ──

func TestSaveSchedule_Success(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-lavado" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, http.StatusOK, dto.SaveScheduleResponse{Message: "ok", RecordCount: 1, InsertedIDs: []int64{7}})
	})
	_ = store.Set("Lavado", "tok-lavado")

	res, err := c.SaveSchedule(context.Background(), dto.AreaLavado, []dto.ScheduleRecord{{Cedula: "123456"}})
	if err != nil {
		t.Fatalf("SaveSchedule 失败: %v", err)
	}
	if res.RecordCount != 1 || len(res.InsertedIDs) != 1 || res.InsertedIDs[0] != 7 {
		t.Errorf("结果错误: %+v", res)
	}
}

func TestSaveSchedule_ErrorClasses(t *testing.T) {
	idx := 3
	tests := []struct {
		name   string
		status int
		body   dto.ErrorResponse
		class  ErrorClass
	}{
		{"校验失败", http.StatusBadRequest, dto.ErrorResponse{Error: "数据校验失败", Details: "CEDULA 无效", RecordIndex: &idx}, ClassValidation},
		{"重复", http.StatusConflict, dto.ErrorResponse{Error: "记录重复", Details: "冲突字段: 123456-2026-03-10"}, ClassConflict},
		{"服务器错误", http.StatusInternalServerError, dto.ErrorResponse{Error: "保存数据失败"}, ClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.SaveSchedule(context.Background(), dto.AreaLavado, nil)
			var ae *APIError
			if !errors.As(err, &ae) {
				t.Fatalf("期望 APIError，实际 %v", err)
			}
			if ae.Class != tt.class || ae.Status != tt.status || ae.Message != tt.body.Error {
				t.Errorf("错误分类不符: %+v", ae)
			}
		})
	}
}

func TestSaveNovedades_TransportErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(Options{BaseURL: url}).SaveNovedades(context.Background(), dto.AreaLavado, nil)
	var ae *APIError
	if !errors.As(err, &ae) || ae.Class != ClassTransport {
		t.Errorf("保存失败必须报错，实际 %v", err)
	}
}

// ── 会话 ──

func TestLoginLogout(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusOK, map[string]any{
				"code":    0,
				"message": "success",
				"data":    dto.AreaSessionResponse{AccessToken: "tok-1", ExpiresIn: 3600},
			})
		case http.MethodDelete:
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("注销请求应携带令牌")
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	if _, err := c.Login(context.Background(), dto.AreaVigilantes, "secret", true); err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if tok, ok, _ := store.Get("Vigilantes"); !ok || tok != "tok-1" {
		t.Errorf("登录后应保存令牌，实际 %q", tok)
	}
	if err := c.Logout(context.Background(), dto.AreaVigilantes); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	if _, ok, _ := store.Get("Vigilantes"); ok {
		t.Error("注销后应清除令牌")
	}
}
