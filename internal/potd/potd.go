// Package potd holds the picture-of-the-day rotation rules: which days are
// copied, where their source pages live and how destination rows look.
package potd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TobiSchelling/potdrotate/internal/dates"
	"github.com/TobiSchelling/potdrotate/internal/wikitext"
)

// Sentinel errors for malformed destination pages.
var (
	ErrNoTemplate  = errors.New("page has no matching template")
	ErrMissingSlot = errors.New("template has no slot for day")
)

const (
	descriptionTemplate = "Potd description"
	filenameTemplate    = "Potd filename"
	multiviewTemplate   = "Multiview"
)

// Entry is one day's source material.
type Entry struct {
	Day         dates.CalendarDate
	Description string
	Filename    string
}

// Window returns the days to copy: today through one month ahead minus two
// days. The month step clamps to the end of the target month, so a window
// starting on Jan 31 ends on Feb 27 (or 26 in a non-leap year).
func Window(today dates.CalendarDate) []dates.CalendarDate {
	last := addMonthClamped(today).AddDays(-2)
	var days []dates.CalendarDate
	for d := today; d.Compare(last) <= 0; d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func addMonthClamped(d dates.CalendarDate) dates.CalendarDate {
	y, m := d.Year, d.Month+1
	if m > time.December {
		y, m = y+1, time.January
	}
	lastDay := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return dates.New(y, m, min(d.Day, lastDay))
}

// ArticleName returns the title of the Commons page holding the description
// of day in lang.
func ArticleName(day dates.CalendarDate, lang string) string {
	return fmt.Sprintf("Template:Potd/%s (%s)", day, lang)
}

// FilenamePageName returns the title of the Commons page naming the file
// shown on day.
func FilenamePageName(day dates.CalendarDate) string {
	return "Template:Potd/" + day.String()
}

// Description extracts argument 1 of {{Potd description}}. It reports
// false for an empty page or when the template or argument is missing.
func Description(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	return wikitext.Argument(text, descriptionTemplate, "1")
}

// Filename extracts the file name from a filename page. Pages that only
// hold the bare name are accepted too. Comments and surrounding whitespace
// are removed.
func Filename(text string) string {
	value := text
	if strings.Contains(value, "{{") {
		value, _ = wikitext.Argument(text, filenameTemplate, "1")
	}
	return strings.TrimSpace(wikitext.StripComments(value))
}

// DescriptionRow renders the switch value for one day.
func DescriptionRow(day dates.CalendarDate, description string, n *wikitext.Normalizer) string {
	return fmt.Sprintf("{{%s|1=%s|2=%s|3=%04d|4=%02d|5=%02d}}\n  ",
		descriptionTemplate, n.Simplify(description), n.Home(), day.Year, day.Month, day.Day)
}

// ImageRow renders the Multiview value for one day.
func ImageRow(day int, filename, dimensions, captionTemplate string) string {
	return fmt.Sprintf("<!--%02d-->[[Image:%s|%s|{{%s}}]]\n  ", day, filename, dimensions, captionTemplate)
}

// SwitchSlot returns the name of the switch case for a day of the month.
func SwitchSlot(day int) string {
	return fmt.Sprintf("<!--%02d-->%d", day, day)
}
