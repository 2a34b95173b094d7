package core

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or location component.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }

func (d Date) String() string {
	return d.t.Format("2006-01-02")
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddYears follows time.AddDate normalization, so Feb 29 plus one year
// lands on Mar 1.
func (d Date) AddYears(n int) Date {
	return Date{t: d.t.AddDate(n, 0, 0)}
}

// ParseDate normalizes a loosely typed date value: a Date, a time.Time,
// or a string in ISO "2006-01-02" or US "1/2/2006" form. Anything else
// is an InvalidDateError.
func ParseDate(v any) (Date, error) {
	switch x := v.(type) {
	case Date:
		if x.IsZero() {
			break
		}
		return x, nil
	case time.Time:
		return NewDate(x.Year(), x.Month(), x.Day()), nil
	case string:
		if t, err := time.Parse("2006-01-02", x); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
		if t, err := time.Parse("1/2/2006", x); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, InvalidDateError(fmt.Sprintf("invalid date \"%v\"", v))
}

// IncrementMonth moves the date one month forward, clamping the day to
// the end of the shorter month (Jan 31 -> Feb 28).
func IncrementMonth(d Date) Date {
	year, month, day := d.Year(), d.Month(), d.Day()
	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// IncrementQuarter moves the date three months forward, clamping the
// original day against the target month only (Jan 31 -> Apr 30, not the
// Apr 28 that chained monthly clamping would give).
func IncrementQuarter(d Date) Date {
	year, month, day := d.Year(), d.Month(), d.Day()
	month += 3
	if month > time.December {
		month -= 12
		year++
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	return NewDate(year, month, day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
