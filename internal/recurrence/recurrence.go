package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout 为提醒锚点日期与展示日期的统一格式
const DateLayout = "2006-01-02"

// Rule 描述提醒的重复规则
type Rule string

const (
	None    Rule = "None"
	Daily   Rule = "Daily"
	Weekly  Rule = "Weekly"
	Monthly Rule = "Monthly"
	Yearly  Rule = "Yearly"
)

// ErrUnknownRule 在重复规则不属于固定枚举时返回
var ErrUnknownRule = errors.New("unknown recurrence rule")

var rules = []Rule{None, Daily, Weekly, Monthly, Yearly}

// ParseRule 忽略大小写与首尾空白解析重复规则
func ParseRule(raw string) (Rule, error) {
	trimmed := strings.TrimSpace(raw)
	for _, rule := range rules {
		if strings.EqualFold(trimmed, string(rule)) {
			return rule, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRule, raw)
}

// Valid 判断规则是否属于固定枚举
func (r Rule) Valid() bool {
	for _, rule := range rules {
		if r == rule {
			return true
		}
	}
	return false
}

// ParseDate 解析 YYYY-MM-DD 格式的日历日期，不存在的日期（如 2月30日）视为错误
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
}

// FormatDate 输出 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Normalize 截断到日历日期（UTC 零点），保留原时区下的年月日
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence 返回不早于 reference 的最近一次发生日期。
// 一次性提醒的锚点早于 reference 时返回 false。
func NextOccurrence(anchor time.Time, rule Rule, reference time.Time) (time.Time, bool) {
	if !rule.Valid() {
		return time.Time{}, false
	}

	_, next, ok := firstOnOrAfter(Normalize(anchor), rule, Normalize(reference))
	return next, ok
}

// Project 返回闭区间 [start, end] 内的全部发生日期，按时间升序。
// 月/年重复每一步都从锚点的日期推导，短月的截断不会影响后续月份。
func Project(anchor time.Time, rule Rule, start, end time.Time) []time.Time {
	if !rule.Valid() {
		return nil
	}

	anchor = Normalize(anchor)
	start = Normalize(start)
	end = Normalize(end)
	if end.Before(start) {
		return nil
	}

	n, current, ok := firstOnOrAfter(anchor, rule, start)
	if !ok {
		return nil
	}

	var dates []time.Time
	for !current.After(end) {
		dates = append(dates, current)
		if rule == None {
			break
		}
		n++
		current = shift(anchor, rule, n)
	}
	return dates
}

// firstOnOrAfter 找到第一个不早于 reference 的周期序号及日期。
// 序号从估算值开始逐个前进，shift 对序号严格递增，因此循环必然终止。
func firstOnOrAfter(anchor time.Time, rule Rule, reference time.Time) (int, time.Time, bool) {
	if !anchor.Before(reference) {
		return 0, anchor, true
	}
	if rule == None {
		return 0, time.Time{}, false
	}

	n := estimatePeriods(anchor, rule, reference)
	for {
		current := shift(anchor, rule, n)
		if !current.Before(reference) {
			return n, current, true
		}
		n++
	}
}

// estimatePeriods 给出一个不会越过答案的起始序号
func estimatePeriods(anchor time.Time, rule Rule, reference time.Time) int {
	days := daysBetween(anchor, reference)
	months := monthsBetween(anchor, reference)

	var n int
	switch rule {
	case Daily:
		n = days
	case Weekly:
		n = days / 7
	case Monthly:
		n = months - 1
	case Yearly:
		n = months/12 - 1
	}
	if n < 1 {
		n = 1
	}
	return n
}

// daysBetween 按日历日计算天数差，不经过 time.Duration，跨度再大也不会饱和
func daysBetween(from, to time.Time) int {
	return civilDay(to) - civilDay(from)
}

// civilDay 返回 1970-01-01 起的日序号
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	if m <= time.February {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	mp := (int(m) + 9) % 12
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// shift 返回锚点之后第 n 个周期的日期
func shift(anchor time.Time, rule Rule, n int) time.Time {
	switch rule {
	case Daily:
		return anchor.AddDate(0, 0, n)
	case Weekly:
		return anchor.AddDate(0, 0, 7*n)
	case Monthly:
		return addMonthsClamped(anchor, n)
	case Yearly:
		return addMonthsClamped(anchor, 12*n)
	default:
		return anchor
	}
}

// addMonthsClamped 前进若干个月，目标月份没有该日时截断到月末
func addMonthsClamped(anchor time.Time, months int) time.Time {
	year, month, day := anchor.Date()

	index := int(month) - 1 + months
	year += index / 12
	month = time.Month(index%12 + 1)

	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func monthsBetween(start, end time.Time) int {
	y1, m1, _ := start.Date()
	y2, m2, _ := end.Date()
	return (y2-y1)*12 + int(m2-m1)
}
