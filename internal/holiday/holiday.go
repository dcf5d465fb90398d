// Package holiday 哥伦比亚法定节假日
package holiday

import (
	"sort"
	"time"
)

// Holiday 单个节假日
type Holiday struct {
	Date time.Time
	Name string
}

// Calendar 按年份给出节假日
type Calendar interface {
	Holidays(year int) []Holiday
}

// Set 以 YYYY-MM-DD 为键的节假日集合
type Set map[string]string

// SetFor 预先计算某一年的节假日集合
func SetFor(c Calendar, year int) Set {
	s := make(Set)
	for _, h := range c.Holidays(year) {
		s[h.Date.Format("2006-01-02")] = h.Name
	}
	return s
}

// Contains 判断 ISO 日期是否为节假日
func (s Set) Contains(iso string) bool {
	_, ok := s[iso]
	return ok
}

// Colombia 哥伦比亚节假日（含 Ley Emiliani 顺延到周一的规则）
type Colombia struct{}

type rule struct {
	month time.Month
	day   int
	name  string
}

// fixed 固定日期
var fixed = []rule{
	{time.January, 1, "Año Nuevo"},
	{time.May, 1, "Día del Trabajo"},
	{time.July, 20, "Día de la Independencia"},
	{time.August, 7, "Batalla de Boyacá"},
	{time.December, 8, "Inmaculada Concepción"},
	{time.December, 25, "Navidad"},
}

// movable 顺延到下一个周一
var movable = []rule{
	{time.January, 6, "Día de los Reyes Magos"},
	{time.March, 19, "Día de San José"},
	{time.June, 29, "San Pedro y San Pablo"},
	{time.August, 15, "Asunción de la Virgen"},
	{time.October, 12, "Día de la Raza"},
	{time.November, 1, "Todos los Santos"},
	{time.November, 11, "Independencia de Cartagena"},
}

// Holidays 实现 Calendar
func (Colombia) Holidays(year int) []Holiday {
	var out []Holiday
	for _, r := range fixed {
		out = append(out, Holiday{Date: date(year, r.month, r.day), Name: r.name})
	}
	for _, r := range movable {
		out = append(out, Holiday{Date: nextMonday(date(year, r.month, r.day)), Name: r.name})
	}

	easter := Easter(year)
	out = append(out,
		Holiday{Date: easter.AddDate(0, 0, -3), Name: "Jueves Santo"},
		Holiday{Date: easter.AddDate(0, 0, -2), Name: "Viernes Santo"},
		Holiday{Date: nextMonday(easter.AddDate(0, 0, 39)), Name: "Ascensión del Señor"},
		Holiday{Date: nextMonday(easter.AddDate(0, 0, 60)), Name: "Corpus Christi"},
		Holiday{Date: nextMonday(easter.AddDate(0, 0, 68)), Name: "Sagrado Corazón"},
	)

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Easter 复活节（格里高利历，匿名算法）
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func nextMonday(t time.Time) time.Time {
	offset := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset)
}
