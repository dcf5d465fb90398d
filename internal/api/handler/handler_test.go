package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/service"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/jwt"
	"github.com/LDanielOchoa/Programacion-Areas/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock EmployeeService ──

type mockEmployeeService struct {
	result *dto.ValidateEmployeesResponse
	err    error
	got    []dto.EmployeeIdentity
}

func (m *mockEmployeeService) ValidateEmployees(_ context.Context, employees []dto.EmployeeIdentity) (*dto.ValidateEmployeesResponse, error) {
	m.got = employees
	return m.result, m.err
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	checkResult *dto.CheckDatesResponse
	checkErr    error
	saveResult  *dto.SaveScheduleResponse
	saveErr     error
	saveCalls   int
}

func (m *mockScheduleService) CheckDates(_ context.Context, _ *dto.CheckDatesRequest) (*dto.CheckDatesResponse, error) {
	return m.checkResult, m.checkErr
}
func (m *mockScheduleService) SaveSchedule(_ context.Context, _ []dto.ScheduleRecord) (*dto.SaveScheduleResponse, error) {
	m.saveCalls++
	return m.saveResult, m.saveErr
}

// ── Mock NovedadService ──

type mockNovedadService struct {
	result *dto.SaveNovedadesResponse
	err    error
}

func (m *mockNovedadService) SaveNovedades(_ context.Context, _ []dto.NovedadRecord) (*dto.SaveNovedadesResponse, error) {
	return m.result, m.err
}

// ── Mock AreaAuthService ──

type mockAreaAuthService struct {
	loginResult *dto.AreaSessionResponse
	loginErr    error
	claims      *jwt.Claims
	verifyErr   error
	logoutErr   error
}

func (m *mockAreaAuthService) Login(_ context.Context, _ dto.AreaType, _ *dto.AreaLoginRequest) (*dto.AreaSessionResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAreaAuthService) Authenticate(_ context.Context, _ string) (*jwt.Claims, error) {
	return m.claims, m.verifyErr
}
func (m *mockAreaAuthService) Verify(_ context.Context, _ dto.AreaType, _ string) (*jwt.Claims, error) {
	return m.claims, m.verifyErr
}
func (m *mockAreaAuthService) Logout(_ context.Context, _ dto.AreaType, _ string) error {
	return m.logoutErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSchedule(_ context.Context, _ *dto.ExportScheduleRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func parseError(w *httptest.ResponseRecorder) dto.ErrorResponse {
	var resp dto.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, path string, body io.Reader, route string, h gin.HandlerFunc, pre ...gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")

	r := gin.New()
	handlers := append(pre, h)
	r.Handle(method, route, handlers...)
	r.ServeHTTP(w, req)
	return w
}

func withSessionArea(area string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeySessionArea, area)
		c.Next()
	}
}

func newProgramacionHandler(emp *mockEmployeeService, sched *mockScheduleService, nov *mockNovedadService, debug *debugInfo) *ProgramacionHandler {
	if emp == nil {
		emp = &mockEmployeeService{}
	}
	if sched == nil {
		sched = &mockScheduleService{}
	}
	if nov == nil {
		nov = &mockNovedadService{}
	}
	return NewProgramacionHandler(emp, sched, nov, debug)
}

// ═══════════════════════════════════════════════════════════
// ProgramacionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestProgramacionHandler_ValidateEmployees_Success(t *testing.T) {
	mock := &mockEmployeeService{result: &dto.ValidateEmployeesResponse{
		IsValid:          false,
		InvalidEmployees: []dto.EmployeeIdentity{{Cedula: "999999", Nombre: "No disponible"}},
		Meta:             dto.ValidationMeta{TotalChecked: 2, ValidCount: 1, InvalidCount: 1},
	}}
	h := newProgramacionHandler(mock, nil, nil, nil)

	w := serve("POST", "/api/validate-employees",
		jsonBody(dto.ValidateEmployeesRequest{Employees: []dto.EmployeeIdentity{{Cedula: "123456"}, {Cedula: "999999"}}}),
		"/api/validate-employees", h.ValidateEmployees)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.ValidateEmployeesResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.IsValid || resp.Meta.InvalidCount != 1 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if len(mock.got) != 2 {
		t.Errorf("expected 2 employees forwarded, got %d", len(mock.got))
	}
}

func TestProgramacionHandler_ValidateEmployees_NotArray(t *testing.T) {
	h := newProgramacionHandler(nil, nil, nil, nil)

	w := serve("POST", "/api/validate-employees", bytes.NewReader([]byte(`{"employees":"123456"}`)),
		"/api/validate-employees", h.ValidateEmployees)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if parseError(w).Error == "" {
		t.Error("expected error message")
	}
}

func TestProgramacionHandler_ValidateEmployees_ServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrNoValidCedulas, http.StatusBadRequest},
		{service.ErrTooManyEmployees, http.StatusBadRequest},
		{errors.New("registry down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		h := newProgramacionHandler(&mockEmployeeService{err: tt.err}, nil, nil, nil)
		w := serve("POST", "/api/validate-employees", jsonBody(dto.ValidateEmployeesRequest{Employees: []dto.EmployeeIdentity{}}),
			"/api/validate-employees", h.ValidateEmployees)
		if w.Code != tt.code {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.code, w.Code)
		}
	}
}

func TestProgramacionHandler_CheckDates(t *testing.T) {
	h := newProgramacionHandler(nil, &mockScheduleService{
		checkResult: &dto.CheckDatesResponse{Exists: true, ExistingDates: []string{"2026-03-10"}},
	}, nil, nil)

	w := serve("POST", "/api/check-dates", jsonBody(dto.CheckDatesRequest{Dates: []string{"2026-03-10"}, Area: "Lavado"}),
		"/api/check-dates", h.CheckDates)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.CheckDatesResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Exists || len(resp.ExistingDates) != 1 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestProgramacionHandler_CheckDates_MissingArea(t *testing.T) {
	h := newProgramacionHandler(nil, &mockScheduleService{checkErr: service.ErrAreaRequired}, nil, nil)

	w := serve("POST", "/api/check-dates", jsonBody(dto.CheckDatesRequest{Dates: []string{"2026-03-10"}}),
		"/api/check-dates", h.CheckDates)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func scheduleBody(area string) io.Reader {
	return jsonBody(dto.SaveScheduleRequest{Records: []dto.ScheduleRecord{
		{Cedula: "123456", FechaProgramacion: "2026-03-10", Horario: "DESCANSO", Area: area, Quincena: "Q1-Marzo"},
	}})
}

func TestProgramacionHandler_SaveSchedule_Success(t *testing.T) {
	h := newProgramacionHandler(nil, &mockScheduleService{
		saveResult: &dto.SaveScheduleResponse{Message: "数据保存成功", RecordCount: 1, InsertedIDs: []int64{42}},
	}, nil, nil)

	w := serve("POST", "/api/save-schedule", scheduleBody("Lavado"), "/api/save-schedule", h.SaveSchedule)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.SaveScheduleResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.RecordCount != 1 || len(resp.InsertedIDs) != 1 || resp.InsertedIDs[0] != 42 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestProgramacionHandler_SaveSchedule_ErrorShapes(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  int
		check func(t *testing.T, resp dto.ErrorResponse)
	}{
		{
			name: "year mismatch",
			err:  &service.YearMismatchError{Year: 2026, Dates: []string{"2025-12-31"}},
			code: http.StatusBadRequest,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				if len(resp.InvalidRecords) != 1 || resp.InvalidRecords[0] != "2025-12-31" {
					t.Errorf("expected invalidRecords, got %+v", resp)
				}
			},
		},
		{
			name: "record validation",
			err:  &service.RecordValidationError{Index: 3, Record: map[string]string{"CEDULA": "12"}, Reason: "CEDULA 无效: 12"},
			code: http.StatusBadRequest,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				if resp.RecordIndex == nil || *resp.RecordIndex != 3 || resp.FailedRecord == nil || resp.Details == "" {
					t.Errorf("expected failedRecord/recordIndex/details, got %+v", resp)
				}
			},
		},
		{
			name: "duplicate",
			err:  &service.DuplicateRecordError{Entry: "123456-2026-03-10"},
			code: http.StatusConflict,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				if resp.Details != "Conflicto en: 123456-2026-03-10" {
					t.Errorf("unexpected details: %q", resp.Details)
				}
			},
		},
		{
			name: "internal without debug",
			err:  errors.New("connection refused"),
			code: http.StatusInternalServerError,
			check: func(t *testing.T, resp dto.ErrorResponse) {
				if resp.Details != "" || resp.Debug != nil {
					t.Errorf("production must not leak details, got %+v", resp)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newProgramacionHandler(nil, &mockScheduleService{saveErr: tt.err}, nil, nil)
			w := serve("POST", "/api/save-schedule", scheduleBody("Lavado"), "/api/save-schedule", h.SaveSchedule)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}
			tt.check(t, parseError(w))
		})
	}
}

func TestProgramacionHandler_SaveSchedule_DebugDetails(t *testing.T) {
	dbg := &debugInfo{database: "bdsaocomco_programacion", host: "db:3306"}
	h := newProgramacionHandler(nil, &mockScheduleService{saveErr: errors.New("connection refused")}, nil, dbg)

	w := serve("POST", "/api/save-schedule", scheduleBody("Lavado"), "/api/save-schedule", h.SaveSchedule)

	resp := parseError(w)
	if resp.Details != "connection refused" || resp.Debug == nil || resp.Debug.Database != "bdsaocomco_programacion" {
		t.Errorf("expected debug info in development, got %+v", resp)
	}
}

func TestProgramacionHandler_SaveSchedule_SessionAreaMismatch(t *testing.T) {
	sched := &mockScheduleService{saveResult: &dto.SaveScheduleResponse{}}
	h := newProgramacionHandler(nil, sched, nil, nil)

	w := serve("POST", "/api/save-schedule", scheduleBody("Vigilantes"), "/api/save-schedule", h.SaveSchedule, withSessionArea("Lavado"))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if sched.saveCalls != 0 {
		t.Error("service must not be called when area mismatches")
	}

	w = serve("POST", "/api/save-schedule", scheduleBody("lavado"), "/api/save-schedule", h.SaveSchedule, withSessionArea("Lavado"))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for matching area, got %d", w.Code)
	}
}

func TestProgramacionHandler_SaveNovedades(t *testing.T) {
	h := newProgramacionHandler(nil, nil, &mockNovedadService{
		result: &dto.SaveNovedadesResponse{Success: true, Message: "ok", RecordCount: 1},
	}, nil)

	body := jsonBody(dto.SaveNovedadesRequest{Records: []dto.NovedadRecord{{Cedula: "123456", FechaProgramacion: "2026-03-10", Area: "Lavado"}}})
	w := serve("POST", "/api/save-novedades", body, "/api/save-novedades", h.SaveNovedades)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.SaveNovedadesResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.RecordCount != 1 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// AreaSessionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAreaSessionHandler_Login(t *testing.T) {
	mock := &mockAreaAuthService{loginResult: &dto.AreaSessionResponse{AccessToken: "tok", ExpiresIn: 3600}}
	h := NewAreaSessionHandler(mock)

	w := serve("POST", "/api/areas/lavado/session", jsonBody(dto.AreaLoginRequest{Password: "x"}),
		"/api/areas/:area/session", h.Login)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAreaSessionHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body io.Reader
		err  error
		code int
	}{
		{"unknown area", "/api/areas/cocina/session", jsonBody(dto.AreaLoginRequest{Password: "x"}), nil, http.StatusNotFound},
		{"missing password", "/api/areas/lavado/session", jsonBody(map[string]string{}), nil, http.StatusBadRequest},
		{"wrong password", "/api/areas/lavado/session", jsonBody(dto.AreaLoginRequest{Password: "x"}), service.ErrInvalidAreaPassword, http.StatusUnauthorized},
		{"not protected", "/api/areas/lavado/session", jsonBody(dto.AreaLoginRequest{Password: "x"}), service.ErrAreaNotProtected, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAreaSessionHandler(&mockAreaAuthService{loginErr: tt.err})
			w := serve("POST", tt.path, tt.body, "/api/areas/:area/session", h.Login)
			if w.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestAreaSessionHandler_CheckAndLogout(t *testing.T) {
	claims := &jwt.Claims{Area: "Lavado", RegisteredClaims: jwtv5.RegisteredClaims{
		ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	h := NewAreaSessionHandler(&mockAreaAuthService{claims: claims})

	if w := serve("GET", "/api/areas/lavado/session", nil, "/api/areas/:area/session", h.Check); w.Code != http.StatusOK {
		t.Errorf("check: expected 200, got %d", w.Code)
	}
	if w := serve("DELETE", "/api/areas/lavado/session", nil, "/api/areas/:area/session", h.Logout); w.Code != http.StatusNoContent {
		t.Errorf("logout: expected 204, got %d", w.Code)
	}

	h = NewAreaSessionHandler(&mockAreaAuthService{verifyErr: service.ErrSessionAreaMismatch})
	if w := serve("GET", "/api/areas/vigilantes/session", nil, "/api/areas/:area/session", h.Check); w.Code != http.StatusForbidden {
		t.Errorf("mismatch: expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportSchedule_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "programacion_Lavado.xlsx"}
	h := NewExportHandler(mock)

	w := serve("GET", "/api/export/schedule?area=Lavado&from=2026-03-01&to=2026-03-15", nil, "/api/export/schedule", h.ExportSchedule)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_ExportSchedule_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		code int
	}{
		{"missing params", "/api/export/schedule?area=Lavado", nil, http.StatusBadRequest},
		{"bad range", "/api/export/schedule?area=Lavado&from=x&to=y", service.ErrExportInvalidRange, http.StatusBadRequest},
		{"no records", "/api/export/schedule?area=Lavado&from=2026-03-01&to=2026-03-15", service.ErrExportNoRecords, http.StatusNotFound},
		{"failure", "/api/export/schedule?area=Lavado&from=2026-03-01&to=2026-03-15", service.ErrExportGenerateFail, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExportHandler(&mockExportService{err: tt.err})
			w := serve("GET", tt.path, nil, "/api/export/schedule", h.ExportSchedule)
			if w.Code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestExportHandler_ExportSchedule_SessionArea(t *testing.T) {
	h := NewExportHandler(&mockExportService{buf: &bytes.Buffer{}})
	w := serve("GET", "/api/export/schedule?area=Vigilantes&from=2026-03-01&to=2026-03-15", nil,
		"/api/export/schedule", h.ExportSchedule, withSessionArea("Lavado"))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

type fakePinger struct {
	name string
	err  error
}

func (p fakePinger) Name() string                 { return p.name }
func (p fakePinger) Ping(_ context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(fakePinger{name: "db"})
	if w := serve("GET", "/health", nil, "/health", h.Health); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	h = NewHealthHandler(fakePinger{name: "db"}, fakePinger{name: "registry_db", err: errors.New("down")})
	if w := serve("GET", "/health", nil, "/health", h.Health); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
