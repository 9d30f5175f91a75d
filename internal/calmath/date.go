// Package calmath implements the date arithmetic used across daycal:
// calendar dates without a time-of-day component, ISO week numbers and
// calendar-field differences between two dates.
package calmath

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	isoLayout     = "2006-01-02"
	compactLayout = "20060102"
)

// ErrInvalidDate is matched (via errors.Is) by every ParseError.
var ErrInvalidDate = errors.New("invalid date")

// ParseError reports a date string that is not a valid "YYYY-MM-DD" value.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("calmath: invalid date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidDate }

// Date is a Gregorian calendar date. It carries no time zone: a Date built
// from a time.Time uses that time's local calendar fields, so it can never
// shift across a zone boundary afterwards.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date for the given fields, normalizing out-of-range
// values the same way time.Date does (e.g. April 31 becomes May 1).
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc. A nil loc means time.Local.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc))
}

// ParseDate parses a strict "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, &ParseError{Input: s, Err: err}
	}
	return FromTime(t), nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Time returns midnight of d in loc. A nil loc means UTC.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) IsZero() bool { return d == Date{} }

// String formats d as "YYYY-MM-DD".
func (d Date) String() string { return d.Time(nil).Format(isoLayout) }

// Compact formats d as "YYYYMMDD", the RFC 5545 DATE form.
func (d Date) Compact() string { return d.Time(nil).Format(compactLayout) }

func (d Date) Weekday() time.Weekday { return d.Time(nil).Weekday() }

// ISOWeekday returns the day of the week with Monday=1 .. Sunday=7.
func (d Date) ISOWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// YearDay returns the ordinal day within the year, 1-based.
func (d Date) YearDay() int { return d.Time(nil).YearDay() }

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// AddMonths moves d by n calendar months, clamping the day to the length of
// the target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	total := d.Year*12 + int(d.Month-1) + n
	y := floorDiv(total, 12)
	m := time.Month(total-y*12) + 1
	day := d.Day
	if last := DaysIn(y, m); day > last {
		day = last
	}
	return Date{Year: y, Month: m, Day: day}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month - other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// MarshalText implements encoding.TextMarshaler using the ISO form.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Invalid input yields a
// *ParseError.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DayCount returns the signed number of whole days from a to b (b − a).
// It is antisymmetric: DayCount(a, b) == -DayCount(b, a).
func DayCount(a, b Date) int {
	return int(b.Time(nil).Sub(a.Time(nil)).Hours() / 24)
}

// DayCountTimes is DayCount for wall-clock times: both values are truncated
// to local midnight in their own location and the difference is rounded, so
// a day containing a DST transition still counts as exactly one day.
func DayCountTimes(a, b time.Time) int {
	am := FromTime(a).Time(a.Location())
	bm := FromTime(b).Time(b.Location())
	return int(math.Round(bm.Sub(am).Hours() / 24))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
