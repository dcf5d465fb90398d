// Package dateparse 解析排班表中出现的各种日期写法
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ISOLayout 入库使用的日期格式
const ISOLayout = "2006-01-02"

// monthAbbrev 西班牙语与英语的三字母月份缩写
var monthAbbrev = map[string]time.Month{
	"ene": time.January, "jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"abr": time.April, "apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August, "aug": time.August,
	"sep": time.September, "set": time.September,
	"oct": time.October,
	"nov": time.November,
	"dic": time.December, "dec": time.December,
}

// dayMonth 形如 6-ene、06-Ene-26、6-ene-2026
var dayMonth = regexp.MustCompile(`^(\d{1,2})[-/ ]([A-Za-z]{3})\.?(?:[-/ ](\d{2}|\d{4}))?$`)

// layouts 依次尝试的文本格式；四位年份的斜杠写法按日/月/年解释，
// 两位年份的写法（1/2/06、01-02-06）是 Excel 内置日期格式的美式显示，按月/日/年解释
var layouts = []string{
	ISOLayout,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"1/2/06",
	"1/2/06 15:04",
	"01-02-06",
	"1-2-06",
	"02-01-2006",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
	time.RFC3339Nano,
}

// serialMin / serialMax 视为 Excel 日期序列号的数值范围（约 1954 至 2119 年）
const (
	serialMin = 20000
	serialMax = 80000
)

// Parse 解析日期文本；仅含日月的写法使用 year 补全年份
func Parse(raw string, year int) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := dayMonth.FindStringSubmatch(s); m != nil {
		month, ok := monthAbbrev[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[1])
		y := year
		switch len(m[3]) {
		case 2:
			yy, _ := strconv.Atoi(m[3])
			y = 2000 + yy
		case 4:
			y, _ = strconv.Atoi(m[3])
		}
		t := time.Date(y, month, day, 0, 0, 0, 0, time.UTC)
		// time.Date 会把 31-feb 进位到三月
		if t.Day() != day {
			return time.Time{}, false
		}
		return t, true
	}

	// Excel 日期序列号
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return Serial(s)
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Serial 把 Excel 日期序列号（可带时间小数部分）转换为日期；超出合理范围的数值不视为日期
func Serial(raw string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < serialMin || serial > serialMax {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// ISO 解析成功时返回 YYYY-MM-DD，否则原样返回输入文本
func ISO(raw string, year int) (string, bool) {
	t, ok := Parse(raw, year)
	if !ok {
		return strings.TrimSpace(raw), false
	}
	return t.Format(ISOLayout), true
}
