package model

import "time"

// ScheduleRecord 排班记录（programacion_turnos）
// 唯一键：CEDULA + Fecha_programacion + Area + Horario_programacion
type ScheduleRecord struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"                 json:"id"`
	Cedula            int64     `gorm:"column:CEDULA;not null"                             json:"CEDULA"`
	FechaProgramacion time.Time `gorm:"column:Fecha_programacion;type:date;not null"       json:"Fecha_programacion"`
	Horario           string    `gorm:"column:Horario_programacion;size:50;not null"       json:"Horario_programacion"`
	Area              string    `gorm:"column:Area;size:50;not null"                       json:"Area"`
	TiempoDescontar   float64   `gorm:"column:Tiempo_a_descontar;not null;default:0"       json:"Tiempo_a_descontar"`
	Quincena          string    `gorm:"column:Quincena;size:20;not null"                   json:"Quincena"`
	Clasificacion     *string   `gorm:"column:clasificacion;size:100"                      json:"clasificacion"`
	FechaConsulta     time.Time `gorm:"column:fecha_consulta;not null"                     json:"fecha_consulta"`
	CreatedModel
}

func (ScheduleRecord) TableName() string { return "programacion_turnos" }
