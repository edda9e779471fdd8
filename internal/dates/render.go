package dates

import (
	"fmt"
	"strings"

	"cloudeng.io/datetime"
	"github.com/dlclark/regexp2"
)

// Run is a maximal stretch of consecutive calendar days.
type Run struct {
	Start CalendarDate
	End   CalendarDate
}

// sameMonthRange matches "11 nov-12 nov". The month on the right must
// repeat the left one exactly, so "30 nov-1 dec" is left alone.
var sameMonthRange = regexp2.MustCompile(`(\d+) (\w+)-(\d+) (\2)`, regexp2.None)

// Render turns an ascending list of distinct dates into a phrase such as
// "11-12 nov en 14 nov". It returns "" for an empty list.
func Render(dates []CalendarDate, locale LocaleProfile) string {
	if len(dates) == 0 {
		return ""
	}

	runs := Runs(dates)
	items := make([]string, 0, len(runs))
	for _, r := range runs {
		start, end := dayMonth(r.Start, locale), dayMonth(r.End, locale)
		if start == end {
			items = append(items, start)
		} else {
			items = append(items, start+"-"+end)
		}
	}

	return compactMonths(join(items, locale.JoinWord))
}

// Runs partitions an ascending list of dates into runs of consecutive days.
// Runs may cross month and year boundaries.
func Runs(dates []CalendarDate) []Run {
	if len(dates) == 0 {
		return nil
	}

	list := make(datetime.CalendarDateList, len(dates))
	for i, d := range dates {
		list[i] = d.calendar()
	}

	merged := list.Merge()
	runs := make([]Run, len(merged))
	for i, r := range merged {
		runs[i] = Run{Start: fromCalendar(r.From()), End: fromCalendar(r.To())}
	}
	return runs
}

func dayMonth(d CalendarDate, locale LocaleProfile) string {
	return fmt.Sprintf("%d %s", d.Day, locale.Month(int(d.Month)))
}

func join(items []string, word string) string {
	if len(items) == 1 {
		return items[0]
	}
	last := len(items) - 1
	return fmt.Sprintf("%s %s %s", strings.Join(items[:last], ", "), word, items[last])
}

func compactMonths(s string) string {
	out, err := sameMonthRange.ReplaceFunc(s, func(m regexp2.Match) string {
		g := m.Groups()
		return g[1].String() + "-" + g[3].String() + " " + g[2].String()
	}, -1, -1)
	if err != nil {
		// Only a match timeout can fail here and none is configured.
		return s
	}
	return out
}
