package dto

import "strings"

// ── 区域 ──

// AreaType 区域（部门），排班数据按区域划分
type AreaType string

const (
	AreaOperaciones        AreaType = "Operaciones"
	AreaLavado             AreaType = "Lavado"
	AreaMantenimiento      AreaType = "Mantenimiento"
	AreaRemanofactura      AreaType = "Remanofactura"
	AreaServiciosGenerales AreaType = "ServiciosGenerales"
	AreaVigilantes         AreaType = "Vigilantes"
	AreaInfraestructura    AreaType = "Infraestructura"
)

// AreaInfo 区域的展示信息
type AreaInfo struct {
	ID          AreaType `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
}

// areaTable 区域查找表，顺序即展示顺序
var areaTable = []AreaInfo{
	{AreaOperaciones, "Operaciones", "Programación de turnos de operación", "blue"},
	{AreaLavado, "Lavado", "Programación de turnos de lavado", "cyan"},
	{AreaMantenimiento, "Mantenimiento", "Programación de turnos de mantenimiento", "orange"},
	{AreaRemanofactura, "Remanofactura", "Programación de turnos de remanofactura", "purple"},
	{AreaServiciosGenerales, "Servicios Generales", "Programación de turnos de servicios generales", "green"},
	{AreaVigilantes, "Vigilantes", "Programación de turnos de vigilancia", "slate"},
	{AreaInfraestructura, "Infraestructura", "Programación de turnos de infraestructura", "amber"},
}

// Areas 全部区域
func Areas() []AreaInfo {
	out := make([]AreaInfo, len(areaTable))
	copy(out, areaTable)
	return out
}

// ParseArea 大小写不敏感地解析区域标识
func ParseArea(s string) (AreaType, bool) {
	s = strings.TrimSpace(s)
	for _, a := range areaTable {
		if strings.EqualFold(string(a.ID), s) {
			return a.ID, true
		}
	}
	return "", false
}

// Info 区域展示信息；未知区域只返回标识
func (a AreaType) Info() AreaInfo {
	for _, info := range areaTable {
		if info.ID == a {
			return info
		}
	}
	return AreaInfo{ID: a, Name: string(a)}
}

// Valid 是否为已知区域
func (a AreaType) Valid() bool {
	for _, info := range areaTable {
		if info.ID == a {
			return true
		}
	}
	return false
}
