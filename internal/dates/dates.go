package dates

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"cloudeng.io/datetime"
	"github.com/araddon/dateparse"
)

// CalendarDate is a plain year/month/day value without a time of day.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the CalendarDate for the given year, month and day.
func New(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC on the date.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to
// or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	return cmp.Compare(d.calendar(), other.calendar())
}

func (d CalendarDate) calendar() datetime.CalendarDate {
	return datetime.NewCalendarDate(d.Year, datetime.Month(d.Month), d.Day)
}

func fromCalendar(cd datetime.CalendarDate) CalendarDate {
	return New(cd.Year(), time.Month(cd.Month()), cd.Day())
}

// String formats the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseDates parses dates in any layout dateparse understands and returns
// them sorted with duplicates removed.
func ParseDates(args []string) ([]CalendarDate, error) {
	out := make([]CalendarDate, 0, len(args))
	for _, arg := range args {
		t, err := dateparse.ParseIn(arg, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", arg, err)
		}
		out = append(out, FromTime(t))
	}
	slices.SortFunc(out, CalendarDate.Compare)
	return slices.Compact(out), nil
}
