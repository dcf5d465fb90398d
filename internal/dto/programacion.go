package dto

// ── 排班记录（入库单元）──
// 字段名沿用数据库列名，前后端共用

// ScheduleRecord 一名员工在一天的排班
type ScheduleRecord struct {
	Cedula            string  `json:"CEDULA"`
	FechaProgramacion string  `json:"Fecha_programacion"`
	Horario           string  `json:"Horario_programacion"`
	Area              string  `json:"Area"`
	TiempoDescontar   float64 `json:"Tiempo_a_descontar"`
	Quincena          string  `json:"Quincena"`
	Clasificacion     *string `json:"clasificacion"`
	FechaConsulta     string  `json:"fecha_consulta"`
}

// NovedadRecord 一条排班异常
type NovedadRecord struct {
	FechaProgramacion string  `json:"FECHA_PROGRAMACION"`
	Cedula            string  `json:"CEDULA"`
	TipoNovedad       string  `json:"TIPO_NOVEDAD"`
	FechaHoraExtra    *string `json:"FECHA_HORA_EXTRA"`
	HoraInicioFin     *string `json:"HORA_INICIO_FIN"`
	Motivo            *string `json:"MOTIVO"`
	CedulaAutoriza    *string `json:"CEDULA_AUTORIZA"`
	Area              string  `json:"AREA"`
	Quincena          string  `json:"QUINCENA"`
	TiempoDescontar   float64 `json:"TIEMPO_DESCONTAR"`
	FechaConsulta     string  `json:"FECHA_CONSULTA"`
}

// EmployeeIdentity 员工身份（按身份证号去重后发送校验）
type EmployeeIdentity struct {
	Cedula string `json:"cedula"`
	Nombre string `json:"nombre"`
}

// ── 请求 ──

// ValidateEmployeesRequest 员工校验请求
type ValidateEmployeesRequest struct {
	Employees []EmployeeIdentity `json:"employees"`
}

// CheckDatesRequest 日期冲突检查请求
type CheckDatesRequest struct {
	Dates []string `json:"dates"`
	Area  string   `json:"area"`
}

// SaveScheduleRequest 保存排班请求
type SaveScheduleRequest struct {
	Records []ScheduleRecord `json:"records"`
}

// SaveNovedadesRequest 保存异常请求
type SaveNovedadesRequest struct {
	Records []NovedadRecord `json:"records"`
}

// ExportScheduleRequest 导出排班查询参数
type ExportScheduleRequest struct {
	Area string `form:"area" binding:"required"`
	From string `form:"from" binding:"required"`
	To   string `form:"to"   binding:"required"`
}

// ── 响应 ──

// ValidationMeta 员工校验统计
type ValidationMeta struct {
	TotalChecked int `json:"totalChecked"`
	ValidCount   int `json:"validCount"`
	InvalidCount int `json:"invalidCount"`
}

// ValidateEmployeesResponse 员工校验结果
type ValidateEmployeesResponse struct {
	IsValid          bool               `json:"isValid"`
	InvalidEmployees []EmployeeIdentity `json:"invalidEmployees"`
	Meta             ValidationMeta     `json:"meta"`
}

// CheckDatesResponse 日期冲突检查结果
type CheckDatesResponse struct {
	Exists        bool     `json:"exists"`
	ExistingDates []string `json:"existingDates"`
}

// SaveScheduleResponse 保存排班结果
type SaveScheduleResponse struct {
	Message     string  `json:"message"`
	RecordCount int     `json:"recordCount"`
	InsertedIDs []int64 `json:"insertedIds"`
}

// SaveNovedadesResponse 保存异常结果
type SaveNovedadesResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RecordCount int    `json:"recordCount"`
}

// ErrorResponse 四个排班接口的错误体
type ErrorResponse struct {
	Error          string          `json:"error"`
	Details        string          `json:"details,omitempty"`
	InvalidRecords []string        `json:"invalidRecords,omitempty"`
	FailedRecord   any             `json:"failedRecord,omitempty"`
	RecordIndex    *int            `json:"recordIndex,omitempty"`
	Code           string          `json:"code,omitempty"`
	Debug          *ErrorDebugInfo `json:"debug,omitempty"`
}

// ErrorDebugInfo 仅开发环境返回的诊断信息
type ErrorDebugInfo struct {
	Cause    string `json:"cause,omitempty"`
	Database string `json:"database,omitempty"`
	Host     string `json:"host,omitempty"`
}
