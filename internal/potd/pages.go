package potd

import (
	"fmt"
	"strconv"

	"github.com/TobiSchelling/potdrotate/internal/dates"
	"github.com/TobiSchelling/potdrotate/internal/wikitext"
)

// UpdateDescriptionPage writes the description row of every entry into the
// first template of text, the day switch. It returns the new text and the
// days whose row actually changed.
func UpdateDescriptionPage(text string, entries []Entry, n *wikitext.Normalizer) (string, []dates.CalendarDate, error) {
	spans := wikitext.FindTemplates(text)
	if len(spans) == 0 {
		return "", nil, fmt.Errorf("description page: %w", ErrNoTemplate)
	}
	sw := spans[0]

	var updated []dates.CalendarDate
	for _, e := range entries {
		slot, ok := sw.Template.Get(SwitchSlot(e.Day.Day))
		if !ok {
			return "", nil, fmt.Errorf("description page, %s: %w", SwitchSlot(e.Day.Day), ErrMissingSlot)
		}
		row := DescriptionRow(e.Day, e.Description, n)
		if slot.Value == row {
			continue
		}
		slot.Value = row
		updated = append(updated, e.Day)
	}

	return splice(text, sw), updated, nil
}

// UpdateImagePage writes the image row of every entry into the Multiview
// template of text, using the day of the month as positional slot. It
// returns the new text and the days whose row actually changed.
func UpdateImagePage(text string, entries []Entry, dimensions, captionTemplate string) (string, []dates.CalendarDate, error) {
	var mv *wikitext.Span
	for _, s := range wikitext.FindTemplates(text) {
		if s.Template.Matches(multiviewTemplate) {
			mv = &s
			break
		}
	}
	if mv == nil {
		return "", nil, fmt.Errorf("image page: %w", ErrNoTemplate)
	}

	var updated []dates.CalendarDate
	for _, e := range entries {
		slot, ok := mv.Template.Get(strconv.Itoa(e.Day.Day))
		if !ok {
			return "", nil, fmt.Errorf("image page, slot %d: %w", e.Day.Day, ErrMissingSlot)
		}
		row := ImageRow(e.Day.Day, e.Filename, dimensions, captionTemplate)
		if slot.Value == row {
			continue
		}
		slot.Value = row
		updated = append(updated, e.Day)
	}

	return splice(text, *mv), updated, nil
}

func splice(text string, s wikitext.Span) string {
	return text[:s.Start] + s.Template.String() + text[s.End:]
}
