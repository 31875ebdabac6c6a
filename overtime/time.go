package overtime

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME OF DAY - Clock fields only, date-independent
// =============================================================================

// TimeOfDay holds hour/minute/second. Claims record wall-clock session
// bounds; the calendar day lives on Date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, &FormatError{Field: "time", Value: s}
}

func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// On combines the clock fields with a calendar day into an instant.
func (t TimeOfDay) On(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func (t TimeOfDay) seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.seconds() < o.seconds() }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.seconds() > o.seconds() }
func (t TimeOfDay) Equal(o TimeOfDay) bool  { return t.seconds() == o.seconds() }

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DurationHours returns end-start in hours, rounded to 2 decimal places.
// A non-positive raw difference wraps by +24h, so overnight sessions come
// out in [0, 24).
func DurationHours(start, end TimeOfDay) decimal.Decimal {
	diff := end.seconds() - start.seconds()
	if diff < 0 {
		diff += 24 * 3600
	}
	return decimal.NewFromInt(int64(diff)).Div(decimal.NewFromInt(3600)).Round(2)
}

// =============================================================================
// DATE - Calendar day value type
// =============================================================================

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate accepts "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &FormatError{Field: "date", Value: s}
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }
func (d Date) Equal(o Date) bool  { return d == o }
func (d Date) IsZero() bool       { return d == Date{} }

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) String() string { return d.Time().Format("2006-01-02") }

// MonthKey returns the zero-padded "YYYY-MM" grouping key.
func (d Date) MonthKey() string { return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month)) }

// StartOfPreviousMonth returns the first day of the month before d's month.
// The submission window extends back exactly this far.
func (d Date) StartOfPreviousMonth() Date {
	t := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return DateOf(t)
}

// MonthKeyOf derives the grouping key for an instant.
func MonthKeyOf(t time.Time) string { return DateOf(t).MonthKey() }
