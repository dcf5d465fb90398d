package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/repository"
)

// ── 员工校验业务错误 ──

var (
	ErrEmployeeListInvalid = errors.New("员工列表格式无效")
	ErrNoValidCedulas      = errors.New("没有可处理的有效身份证号")
	ErrTooManyEmployees    = errors.New("每次请求最多 1000 名员工")
)

// MaxEmployeesPerRequest 单次校验的员工上限
const MaxEmployeesPerRequest = 1000

// UnknownEmployeeName 请求中未提供姓名时的占位
const UnknownEmployeeName = "No disponible"

var nonDigits = regexp.MustCompile(`\D`)

// cleanCedula 去除身份证号中的非数字字符
func cleanCedula(s string) string {
	return strings.TrimSpace(nonDigits.ReplaceAllString(s, ""))
}

// EmployeeService 员工校验业务接口
type EmployeeService interface {
	// ValidateEmployees 检查员工是否存在于人员登记库
	ValidateEmployees(ctx context.Context, employees []dto.EmployeeIdentity) (*dto.ValidateEmployeesResponse, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

func (s *employeeService) ValidateEmployees(ctx context.Context, employees []dto.EmployeeIdentity) (*dto.ValidateEmployeesResponse, error) {
	if employees == nil {
		return nil, ErrEmployeeListInvalid
	}

	// 1. 过滤没有身份证号的条目
	candidates := make([]dto.EmployeeIdentity, 0, len(employees))
	for _, e := range employees {
		if strings.TrimSpace(e.Cedula) != "" {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoValidCedulas
	}
	if len(candidates) > MaxEmployeesPerRequest {
		return nil, ErrTooManyEmployees
	}

	// 2. 清洗并去重
	seen := make(map[string]bool, len(candidates))
	cedulas := make([]string, 0, len(candidates))
	for _, e := range candidates {
		c := cleanCedula(e.Cedula)
		if c != "" && !seen[c] {
			seen[c] = true
			cedulas = append(cedulas, c)
		}
	}
	if len(cedulas) == 0 {
		return nil, ErrNoValidCedulas
	}

	// 3. 查询登记库
	found, err := s.repo.EmployeeRegistry.FindExisting(ctx, cedulas)
	if err != nil {
		s.logger.Error("查询人员登记库失败", zap.Int("cedulas", len(cedulas)), zap.Error(err))
		return nil, err
	}
	valid := make(map[string]bool, len(found))
	for _, f := range found {
		if c := cleanCedula(f); c != "" {
			valid[c] = true
		}
	}

	// 4. 汇总未找到的员工
	invalid := make([]dto.EmployeeIdentity, 0)
	for _, e := range candidates {
		if valid[cleanCedula(e.Cedula)] {
			continue
		}
		name := strings.TrimSpace(e.Nombre)
		if name == "" {
			name = UnknownEmployeeName
		}
		invalid = append(invalid, dto.EmployeeIdentity{Cedula: e.Cedula, Nombre: name})
	}

	s.logger.Info("员工校验完成",
		zap.Int("checked", len(candidates)),
		zap.Int("valid", len(valid)),
		zap.Int("invalid", len(invalid)),
	)

	return &dto.ValidateEmployeesResponse{
		IsValid:          len(invalid) == 0,
		InvalidEmployees: invalid,
		Meta: dto.ValidationMeta{
			TotalChecked: len(candidates),
			ValidCount:   len(valid),
			InvalidCount: len(invalid),
		},
	}, nil
}
