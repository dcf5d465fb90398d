package model

import "time"

// Novedad 排班异常记录（novedades_programacion_empleados）
type Novedad struct {
	ID                int64      `gorm:"column:id;primaryKey;autoIncrement"          json:"id"`
	FechaProgramacion time.Time  `gorm:"column:FECHA_PROGRAMACION;type:date;not null" json:"FECHA_PROGRAMACION"`
	Cedula            int64      `gorm:"column:CEDULA;not null"                      json:"CEDULA"`
	TipoNovedad       string     `gorm:"column:TIPO_NOVEDAD;size:100;not null"       json:"TIPO_NOVEDAD"`
	FechaHoraExtra    *time.Time `gorm:"column:FECHA_HORA_EXTRA;type:date"           json:"FECHA_HORA_EXTRA"`
	HoraInicioFin     *string    `gorm:"column:HORA_INICIO_FIN;size:50"              json:"HORA_INICIO_FIN"`
	Motivo            *string    `gorm:"column:MOTIVO;size:500"                      json:"MOTIVO"`
	CedulaAutoriza    *string    `gorm:"column:CEDULA_AUTORIZA;size:20"              json:"CEDULA_AUTORIZA"`
	Area              string     `gorm:"column:AREA;size:50;not null"                json:"AREA"`
	Quincena          string     `gorm:"column:QUINCENA;size:20;not null"            json:"QUINCENA"`
	TiempoDescontar   float64    `gorm:"column:TIEMPO_DESCONTAR;not null;default:0"  json:"TIEMPO_DESCONTAR"`
	FechaConsulta     time.Time  `gorm:"column:FECHA_CONSULTA;not null"              json:"FECHA_CONSULTA"`
	CreatedModel
}

func (Novedad) TableName() string { return "novedades_programacion_empleados" }
