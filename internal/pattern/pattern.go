package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ferrors "github.com/siegeon/tasksched/internal/foundation/errors"
)

// Kind distinguishes the three recognized pattern shapes.
type Kind int

const (
	KindInterval Kind = iota
	KindWeekday
	KindMonthDay
)

// intervalUnits is the set of the six allowed interval units (matched
// case-sensitively; the grammar does not allow case variation for units).
var intervalUnits = map[string]bool{
	"seconds": true,
	"minutes": true,
	"hours":   true,
	"days":    true,
	"weeks":   true,
	"months":  true,
}

// weekdayByName maps a lower-cased weekday name to its time.Weekday value.
var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Pattern is an immutable, parsed repetition pattern.
type Pattern struct {
	kind Kind

	// Interval fields.
	n    int
	unit string

	// Weekday fields (also used by month/day for the HH.mm.ss tail).
	anyWeekday bool
	weekdays   []time.Weekday // canonicalized, input order preserved
	hour, min, sec int

	// Month/day fields.
	anyMonth bool
	months   []int // input order preserved
	anyDay   bool
	days     []int // input order preserved
}

// Parse validates text against the pattern grammar and returns an immutable
// Pattern. Parse failures are returned as a *errors.ClassifiedError in
// CategoryValidation — a parse-error is a validation error raised at
// construction time.
func Parse(text string) (*Pattern, error) {
	segments := strings.Split(text, ".")

	for _, seg := range segments {
		if seg == "" {
			return nil, parseError(text, "empty segment")
		}
	}

	switch len(segments) {
	case 2:
		return parseInterval(text, segments)
	case 3:
		return nil, parseError(text, "three segments is ambiguous between weekday and month/day forms")
	case 4:
		return parseWeekday(text, segments)
	case 5:
		return parseMonthDay(text, segments)
	default:
		return nil, parseError(text, fmt.Sprintf("unrecognized segment count %d", len(segments)))
	}
}

func parseError(text, reason string) error {
	return ferrors.ValidationError(fmt.Sprintf("invalid pattern %q: %s", text, reason)).
		WithContext("pattern", text).
		Build()
}

func parseInterval(text string, segments []string) (*Pattern, error) {
	n, err := strconv.Atoi(segments[0])
	if err != nil || n <= 0 {
		return nil, parseError(text, "interval count must be a positive integer")
	}
	unit := segments[1]
	if !intervalUnits[unit] {
		return nil, parseError(text, fmt.Sprintf("unknown interval unit %q", unit))
	}
	return &Pattern{kind: KindInterval, n: n, unit: unit}, nil
}

func parseWeekday(text string, segments []string) (*Pattern, error) {
	anyWeekday, weekdays, err := parseWeekdaySegment(segments[0])
	if err != nil {
		return nil, parseError(text, err.Error())
	}
	hour, min, sec, err := parseTimeSegments(segments[1], segments[2], segments[3])
	if err != nil {
		return nil, parseError(text, err.Error())
	}
	return &Pattern{
		kind:       KindWeekday,
		anyWeekday: anyWeekday,
		weekdays:   weekdays,
		hour:       hour,
		min:        min,
		sec:        sec,
	}, nil
}

func parseMonthDay(text string, segments []string) (*Pattern, error) {
	anyMonth, months, err := parseNumberListSegment(segments[0], 1, 12)
	if err != nil {
		return nil, parseError(text, "month: "+err.Error())
	}
	anyDay, days, err := parseNumberListSegment(segments[1], 1, 31)
	if err != nil {
		return nil, parseError(text, "day: "+err.Error())
	}
	if !anyDay && len(days) == 0 {
		return nil, parseError(text, "month/day form requires at least one day value")
	}
	hour, min, sec, err := parseTimeSegments(segments[2], segments[3], segments[4])
	if err != nil {
		return nil, parseError(text, err.Error())
	}
	return &Pattern{
		kind:     KindMonthDay,
		anyMonth: anyMonth,
		months:   months,
		anyDay:   anyDay,
		days:     days,
		hour:     hour,
		min:      min,
		sec:      sec,
	}, nil
}

func parseWeekdaySegment(seg string) (anyWeekday bool, weekdays []time.Weekday, err error) {
	if seg == "**" {
		return true, nil, nil
	}
	names := strings.Split(seg, "|")
	seen := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		wd, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return false, nil, fmt.Errorf("unknown weekday name %q", name)
		}
		if !seen[wd] {
			seen[wd] = true
			weekdays = append(weekdays, wd)
		}
	}
	if len(weekdays) == 0 {
		return false, nil, fmt.Errorf("weekday segment must name at least one day")
	}
	return false, weekdays, nil
}

func parseNumberListSegment(seg string, min, max int) (isAny bool, values []int, err error) {
	if seg == "**" {
		return true, nil, nil
	}
	parts := strings.Split(seg, "|")
	seen := make(map[int]bool, len(parts))
	for _, part := range parts {
		v, convErr := strconv.Atoi(part)
		if convErr != nil || v < min || v > max {
			return false, nil, fmt.Errorf("value %q out of range [%d,%d]", part, min, max)
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return false, values, nil
}

func parseTimeSegments(hSeg, mSeg, sSeg string) (hour, min, sec int, err error) {
	hour, err = parseBoundedInt(hSeg, 0, 23)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("hour: %w", err)
	}
	min, err = parseBoundedInt(mSeg, 0, 59)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("minute: %w", err)
	}
	sec, err = parseBoundedInt(sSeg, 0, 59)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("second: %w", err)
	}
	return hour, min, sec, nil
}

func parseBoundedInt(seg string, min, max int) (int, error) {
	if seg == "**" {
		return 0, fmt.Errorf("wildcard not permitted here")
	}
	v, err := strconv.Atoi(seg)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("%q out of range [%d,%d]", seg, min, max)
	}
	return v, nil
}

// Kind reports which of the three shapes this Pattern was parsed as.
func (p *Pattern) Kind() Kind { return p.kind }

// Next computes the next fire instant strictly after now (UTC). now should
// already be UTC; Next does not convert it.
func (p *Pattern) Next(now time.Time) time.Time {
	switch p.kind {
	case KindInterval:
		return p.nextInterval(now)
	case KindWeekday:
		return p.nextWeekday(now)
	case KindMonthDay:
		return p.nextMonthDay(now)
	default:
		panic("pattern: unknown kind")
	}
}

func (p *Pattern) nextInterval(now time.Time) time.Time {
	switch p.unit {
	case "seconds":
		return now.Add(time.Duration(p.n) * time.Second)
	case "minutes":
		return now.Add(time.Duration(p.n) * time.Minute)
	case "hours":
		return now.Add(time.Duration(p.n) * time.Hour)
	case "days":
		return now.AddDate(0, 0, p.n)
	case "weeks":
		return now.AddDate(0, 0, p.n*7)
	case "months":
		return now.AddDate(0, p.n, 0)
	default:
		panic("pattern: unknown interval unit " + p.unit)
	}
}

func (p *Pattern) nextWeekday(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), p.hour, p.min, p.sec, 0, time.UTC)
	for !candidate.After(now) || !p.weekdayAllowed(candidate.Weekday()) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func (p *Pattern) nextMonthDay(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), p.hour, p.min, p.sec, 0, time.UTC)
	for !candidate.After(now) || !p.monthAllowed(candidate.Month()) || !p.dayAllowed(candidate.Day()) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func (p *Pattern) weekdayAllowed(wd time.Weekday) bool {
	if p.anyWeekday {
		return true
	}
	for _, allowed := range p.weekdays {
		if allowed == wd {
			return true
		}
	}
	return false
}

func (p *Pattern) monthAllowed(m time.Month) bool {
	if p.anyMonth {
		return true
	}
	for _, allowed := range p.months {
		if time.Month(allowed) == m {
			return true
		}
	}
	return false
}

func (p *Pattern) dayAllowed(d int) bool {
	if p.anyDay {
		return true
	}
	for _, allowed := range p.days {
		if allowed == d {
			return true
		}
	}
	return false
}

// Value returns the canonical textual form of the Pattern. Parsing Value
// again always yields a Pattern with the same Value (round-trip, §8).
func (p *Pattern) Value() string {
	switch p.kind {
	case KindInterval:
		return fmt.Sprintf("%d.%s", p.n, p.unit)
	case KindWeekday:
		return fmt.Sprintf("%s.%s", weekdaySegmentValue(p.anyWeekday, p.weekdays), timeSegmentValue(p.hour, p.min, p.sec))
	case KindMonthDay:
		return fmt.Sprintf("%s.%s.%s",
			numberListValue(p.anyMonth, p.months),
			numberListValue(p.anyDay, p.days),
			timeSegmentValue(p.hour, p.min, p.sec))
	default:
		panic("pattern: unknown kind")
	}
}

func timeSegmentValue(hour, min, sec int) string {
	return fmt.Sprintf("%02d.%02d.%02d", hour, min, sec)
}

func numberListValue(isAny bool, values []int) string {
	if isAny {
		return "**"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "|")
}
