package database

// Run is one recorded rotation run.
type Run struct {
	ID                 int64
	RunDate            string // YYYY-MM-DD
	Lang               string
	UpdatedDays        []string
	Summary            string
	DescriptionChanged bool
	ImagesChanged      bool
	Purged             bool
	CreatedAt          *string
}

// Saved reports whether the run wrote the destination pages.
func (r *Run) Saved() bool {
	return r.DescriptionChanged || r.ImagesChanged
}

// Stats contains aggregate run statistics.
type Stats struct {
	TotalRuns   int
	SavedRuns   int
	DaysUpdated int
	Purges      int
	LastRunDate string
}
