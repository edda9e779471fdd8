// Package pipeline runs one picture-of-the-day rotation: it collects the
// source pages for the current window, rewrites both destination pages,
// saves and purges, and records the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/TobiSchelling/potdrotate/internal/config"
	"github.com/TobiSchelling/potdrotate/internal/database"
	"github.com/TobiSchelling/potdrotate/internal/dates"
	"github.com/TobiSchelling/potdrotate/internal/pages"
	"github.com/TobiSchelling/potdrotate/internal/potd"
	"github.com/TobiSchelling/potdrotate/internal/wikitext"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// PageDiff is the pending change to one destination page.
type PageDiff struct {
	Title string
	Diff  string
}

// Result holds the results of a full pipeline run.
type Result struct {
	Today       dates.CalendarDate
	Lang        string
	UpdatedDays []dates.CalendarDate
	Summary     string
	Diffs       []PageDiff
	Steps       []StepResult
}

// Err returns the first step error, if any.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return fmt.Errorf("%s: %w", s.Name, s.Err)
		}
	}
	return nil
}

// Pipeline orchestrates the 6-step rotation.
type Pipeline struct {
	cfg        *config.Config
	db         *database.DB
	source     pages.Store
	target     pages.Store
	wiki       config.Wiki
	locale     dates.LocaleProfile
	normalizer *wikitext.Normalizer
}

// New creates a new pipeline. db may be nil, in which case runs are not
// recorded.
func New(cfg *config.Config, db *database.DB, source, target pages.Store) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	wiki, err := cfg.Wiki()
	if err != nil {
		return nil, err
	}
	locale, err := cfg.Locale()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:        cfg,
		db:         db,
		source:     source,
		target:     target,
		wiki:       wiki,
		locale:     locale,
		normalizer: wikitext.NewNormalizer(cfg.Lang),
	}, nil
}

// plan is the computed outcome of steps 1 to 3.
type plan struct {
	entries         []potd.Entry
	descOld         string
	descNew         string
	descDays        []dates.CalendarDate
	fileOld         string
	fileNew         string
	imageDays       []dates.CalendarDate
	descriptionDiff bool
	imagesDiff      bool
}

func (pl *plan) changed() bool {
	return pl.descriptionDiff || pl.imagesDiff
}

// updatedDays returns every day whose description or image row changed.
func (pl *plan) updatedDays() []dates.CalendarDate {
	days := slices.Concat(pl.descDays, pl.imageDays)
	slices.SortFunc(days, dates.CalendarDate.Compare)
	return slices.Compact(days)
}

// Run executes the full 6-step pipeline.
func (p *Pipeline) Run(ctx context.Context, today dates.CalendarDate) *Result {
	r := &Result{Today: today, Lang: p.cfg.Lang}
	pl := &plan{}

	// Step 1: Collect
	step := p.runCollect(ctx, today, pl)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Descriptions
	step = p.runDescriptions(ctx, pl)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 3: Images
	step = p.runImages(ctx, pl)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	r.UpdatedDays = pl.updatedDays()
	if pl.changed() {
		r.Summary = p.editSummary(r.UpdatedDays)
	}

	// Step 4: Save
	step = p.runSave(ctx, pl, r.Summary)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 5: Purge
	purge := slices.Contains(r.UpdatedDays, today)
	step = p.runPurge(ctx, purge)
	r.Steps = append(r.Steps, step)

	// Step 6: Record
	step = p.runRecord(r, pl, purge && step.Err == nil)
	r.Steps = append(r.Steps, step)

	return r
}

// DryRun computes the same edits as Run and reports them as diffs
// without writing, purging or recording anything.
func (p *Pipeline) DryRun(ctx context.Context, today dates.CalendarDate) *Result {
	r := &Result{Today: today, Lang: p.cfg.Lang}
	pl := &plan{}

	for _, fn := range []func() StepResult{
		func() StepResult { return p.runCollect(ctx, today, pl) },
		func() StepResult { return p.runDescriptions(ctx, pl) },
		func() StepResult { return p.runImages(ctx, pl) },
	} {
		step := fn()
		step.Summary = "[dry-run] " + step.Summary
		r.Steps = append(r.Steps, step)
		if step.Err != nil {
			return r
		}
	}

	r.UpdatedDays = pl.updatedDays()
	if !pl.changed() {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Save",
			Summary: "[dry-run] Both pages are up to date",
		})
		return r
	}

	r.Summary = p.editSummary(r.UpdatedDays)
	r.Diffs = []PageDiff{
		{Title: p.wiki.DescriptionPage, Diff: LineDiff(pl.descOld, pl.descNew)},
		{Title: p.wiki.FilePage, Diff: LineDiff(pl.fileOld, pl.fileNew)},
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Save",
		Summary: fmt.Sprintf("[dry-run] Would save both pages: %s", r.Summary),
	})
	if slices.Contains(r.UpdatedDays, today) {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Purge",
			Summary: fmt.Sprintf("[dry-run] Would purge %s", p.wiki.MainPage),
		})
	}
	return r
}

func (p *Pipeline) editSummary(days []dates.CalendarDate) string {
	return fmt.Sprintf(p.wiki.EditSummary, dates.Render(days, p.locale))
}

func (p *Pipeline) runCollect(ctx context.Context, today dates.CalendarDate, pl *plan) StepResult {
	slog.Info("Step 1/6: Collecting source pages...")
	window := potd.Window(today)
	skipped := 0

	for _, day := range window {
		text, err := p.source.Text(ctx, potd.ArticleName(day, p.cfg.Lang))
		if errors.Is(err, pages.ErrPageNotFound) {
			text = ""
		} else if err != nil {
			return StepResult{Name: "Collect", Err: err}
		}

		desc, ok := potd.Description(text)
		if !ok {
			slog.Debug("no description", "day", day)
			skipped++
			continue
		}

		fileText, err := p.source.Text(ctx, potd.FilenamePageName(day))
		if errors.Is(err, pages.ErrPageNotFound) {
			slog.Warn("description without filename page, skipping day", "day", day)
			skipped++
			continue
		} else if err != nil {
			return StepResult{Name: "Collect", Err: err}
		}

		pl.entries = append(pl.entries, potd.Entry{
			Day:         day,
			Description: desc,
			Filename:    potd.Filename(fileText),
		})
	}

	return StepResult{
		Name: "Collect",
		Summary: fmt.Sprintf("Collected %d of %d days (%s to %s), %d skipped",
			len(pl.entries), len(window), window[0], window[len(window)-1], skipped),
	}
}

func (p *Pipeline) runDescriptions(ctx context.Context, pl *plan) StepResult {
	slog.Info("Step 2/6: Updating description page...")
	old, err := p.target.Text(ctx, p.wiki.DescriptionPage)
	if err != nil {
		return StepResult{Name: "Descriptions", Err: err}
	}
	text, days, err := potd.UpdateDescriptionPage(old, pl.entries, p.normalizer)
	if err != nil {
		return StepResult{Name: "Descriptions", Err: err}
	}
	pl.descOld, pl.descNew, pl.descDays = old, text, days
	pl.descriptionDiff = old != text
	return StepResult{
		Name:    "Descriptions",
		Summary: fmt.Sprintf("%d descriptions changed", len(days)),
	}
}

func (p *Pipeline) runImages(ctx context.Context, pl *plan) StepResult {
	slog.Info("Step 3/6: Updating image page...")
	old, err := p.target.Text(ctx, p.wiki.FilePage)
	if err != nil {
		return StepResult{Name: "Images", Err: err}
	}
	text, days, err := potd.UpdateImagePage(old, pl.entries, p.wiki.ImageDimensions, p.wiki.DescriptionTemplate)
	if err != nil {
		return StepResult{Name: "Images", Err: err}
	}
	pl.fileOld, pl.fileNew, pl.imageDays = old, text, days
	pl.imagesDiff = old != text
	return StepResult{
		Name:    "Images",
		Summary: fmt.Sprintf("%d images changed", len(days)),
	}
}

// runSave writes both pages when either changed.
func (p *Pipeline) runSave(ctx context.Context, pl *plan, summary string) StepResult {
	slog.Info("Step 4/6: Saving pages...")
	if !pl.changed() {
		return StepResult{Name: "Save", Summary: "Both pages are up to date"}
	}
	if err := p.target.Save(ctx, p.wiki.DescriptionPage, pl.descNew, summary); err != nil {
		return StepResult{Name: "Save", Err: err}
	}
	if err := p.target.Save(ctx, p.wiki.FilePage, pl.fileNew, summary); err != nil {
		return StepResult{Name: "Save", Err: err}
	}
	return StepResult{Name: "Save", Summary: "Saved both pages: " + summary}
}

func (p *Pipeline) runPurge(ctx context.Context, purge bool) StepResult {
	slog.Info("Step 5/6: Purging main page...")
	if !purge {
		return StepResult{Name: "Purge", Summary: "Today's picture unchanged, no purge needed"}
	}
	if err := p.target.Purge(ctx, p.wiki.MainPage); err != nil {
		return StepResult{Name: "Purge", Err: err}
	}
	return StepResult{Name: "Purge", Summary: "Purged " + p.wiki.MainPage}
}

func (p *Pipeline) runRecord(r *Result, pl *plan, purged bool) StepResult {
	slog.Info("Step 6/6: Recording run...")
	if p.db == nil {
		return StepResult{Name: "Record", Summary: "No database, run not recorded"}
	}

	days := make([]string, len(r.UpdatedDays))
	for i, d := range r.UpdatedDays {
		days[i] = d.String()
	}
	id, err := p.db.InsertRun(&database.Run{
		RunDate:            r.Today.String(),
		Lang:               r.Lang,
		UpdatedDays:        days,
		Summary:            r.Summary,
		DescriptionChanged: pl.descriptionDiff,
		ImagesChanged:      pl.imagesDiff,
		Purged:             purged,
	})
	if err != nil {
		return StepResult{Name: "Record", Err: err}
	}
	return StepResult{Name: "Record", Summary: fmt.Sprintf("Recorded run %d", id)}
}
