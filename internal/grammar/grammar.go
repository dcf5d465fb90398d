package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind 排班单元格的语法分类
type Kind int

const (
	KindEmpty Kind = iota
	KindTimeRange
	KindTimeRangeWithDeduction
	KindSpecial
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindTimeRange:
		return "time_range"
	case KindTimeRangeWithDeduction:
		return "time_range_with_deduction"
	case KindSpecial:
		return "special"
	default:
		return "invalid"
	}
}

// TimeRange HH:MM - HH:MM
type TimeRange struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// String 还原为两位补零的文本形式
func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:%02d - %02d:%02d", r.StartHour, r.StartMinute, r.EndHour, r.EndMinute)
}

// Token 单元格解析结果（带标签的变体）
//   - KindTimeRange:              Range
//   - KindTimeRangeWithDeduction: Range + Deduction
//   - KindSpecial:                Special（规范化为大写）
//   - KindInvalid:                Raw + Reason
type Token struct {
	Kind      Kind
	Range     TimeRange
	Deduction float64
	Special   string
	Raw       string
	Reason    string
}

// Valid 空单元格与前三种变体均视为合法
func (t Token) Valid() bool {
	return t.Kind != KindInvalid
}

// SpecialTokens 非时间类排班值（封闭词表）
var SpecialTokens = []string{
	"DESCANSO",
	"VACACIONES",
	"AUSENCIA",
	"SUSPENSION",
	"LIC REM",
	"LIC NO REM",
	"INC ENF",
	"INC ACC",
	"CAMBIO TURNO",
	"HORA EXT NO PROG",
	"CALAMIDAD",
}

var (
	specialSet = func() map[string]struct{} {
		m := make(map[string]struct{}, len(SpecialTokens))
		for _, s := range SpecialTokens {
			m[s] = struct{}{}
		}
		return m
	}()

	strictRange     = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9]) - ([01][0-9]|2[0-3]):([0-5][0-9])$`)
	strictDeduction = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9]) - ([01][0-9]|2[0-3]):([0-5][0-9]) \[(\d+(?:\.\d+)?)\]$`)
	lenientShift    = regexp.MustCompile(`^\d{1,2}:\d{2} - \d{1,2}:\d{2}(?: \[\d+(?:\.\d+)?\])?$`)
	deductionSuffix = regexp.MustCompile(`\s*\[(\d+(?:\.\d+)?)\]$`)
	singleDigitHour = regexp.MustCompile(`\b(\d):(\d\d)\b`)
	missingZero     = regexp.MustCompile(`\b[0-9]:[0-5][0-9]\b`)
)

// IsSpecial 大小写不敏感地判断是否为特殊值
func IsSpecial(s string) bool {
	_, ok := specialSet[Canonical(s)]
	return ok
}

// Canonical 去除首尾空白并转为大写（cases.Caser 有状态，每次新建）
func Canonical(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// Classify 按严格语法对单元格文本分类
func Classify(raw string) Token {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Token{Kind: KindEmpty, Raw: raw}
	}

	if IsSpecial(s) {
		return Token{Kind: KindSpecial, Special: Canonical(s), Raw: raw}
	}

	if m := strictRange.FindStringSubmatch(s); m != nil {
		return Token{Kind: KindTimeRange, Range: rangeFrom(m[1:5]), Raw: raw}
	}

	if m := strictDeduction.FindStringSubmatch(s); m != nil {
		d, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			return Token{Kind: KindInvalid, Raw: raw, Reason: "扣除时长无法解析"}
		}
		return Token{Kind: KindTimeRangeWithDeduction, Range: rangeFrom(m[1:5]), Deduction: d, Raw: raw}
	}

	reason := "不符合 HH:MM - HH:MM 格式"
	if LooksLikeMissingZero(s) {
		reason = "小时缺少前导零"
	}
	return Token{Kind: KindInvalid, Raw: raw, Reason: reason}
}

// IsLenient 解析阶段的宽松校验：允许一位数小时，用于拒绝完全无法识别的文件
func IsLenient(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" || IsSpecial(s) {
		return true
	}
	return lenientShift.MatchString(s)
}

// LooksLikeMissingZero 检测形如 7:30 的一位数小时
func LooksLikeMissingZero(s string) bool {
	return missingZero.MatchString(s)
}

// SplitDeduction 拆出末尾的 [X.X] 扣除标注
// 返回去除标注后的文本、扣除值、是否存在标注
func SplitDeduction(s string) (string, float64, bool) {
	s = strings.TrimSpace(s)
	m := deductionSuffix.FindStringSubmatchIndex(s)
	if m == nil {
		return s, 0, false
	}
	d, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
	if err != nil {
		return s, 0, false
	}
	return strings.TrimSpace(s[:m[0]]), d, true
}

// PadHours 为一位数小时补零，保留末尾的 [X.X] 标注；特殊值原样返回
func PadHours(s string) string {
	if IsSpecial(s) {
		return s
	}
	fixed := singleDigitHour.ReplaceAllString(s, "0$1:$2")

	if loc := deductionSuffix.FindStringIndex(fixed); loc != nil {
		return strings.TrimSpace(fixed[:loc[0]]) + " " + strings.TrimSpace(fixed[loc[0]:])
	}
	return fixed
}

func rangeFrom(parts []string) TimeRange {
	n := make([]int, 4)
	for i, p := range parts {
		n[i], _ = strconv.Atoi(p)
	}
	return TimeRange{StartHour: n[0], StartMinute: n[1], EndHour: n[2], EndMinute: n[3]}
}
