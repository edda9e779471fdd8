package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

const runColumns = `id, run_date, lang, updated_days, summary,
	description_changed, images_changed, purged, created_at`

// InsertRun records a rotation run and returns its ID.
func (db *DB) InsertRun(r *Run) (int64, error) {
	days := r.UpdatedDays
	if days == nil {
		days = []string{}
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return 0, fmt.Errorf("encoding updated days: %w", err)
	}

	result, err := db.conn.Exec(
		`INSERT INTO runs
		(run_date, lang, updated_days, summary, description_changed, images_changed, purged)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunDate, r.Lang, string(daysJSON), r.Summary,
		boolToInt(r.DescriptionChanged), boolToInt(r.ImagesChanged), boolToInt(r.Purged),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetRecentRuns returns up to limit runs, newest first.
func (db *DB) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		"SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetLastRun returns the most recent run, or nil if none exist.
func (db *DB) GetLastRun() (*Run, error) {
	row := db.conn.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY id DESC LIMIT 1")
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetStats returns aggregate run statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM runs", &s.TotalRuns},
		{"SELECT COUNT(*) FROM runs WHERE description_changed = 1 OR images_changed = 1", &s.SavedRuns},
		{"SELECT COALESCE(SUM(json_array_length(updated_days)), 0) FROM runs", &s.DaysUpdated},
		{"SELECT COUNT(*) FROM runs WHERE purged = 1", &s.Purges},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	var last sql.NullString
	if err := db.conn.QueryRow("SELECT MAX(run_date) FROM runs").Scan(&last); err != nil {
		return nil, err
	}
	s.LastRunDate = last.String

	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var daysJSON string
	var desc, images, purged int
	if err := row.Scan(&r.ID, &r.RunDate, &r.Lang, &daysJSON, &r.Summary,
		&desc, &images, &purged, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(daysJSON), &r.UpdatedDays); err != nil {
		return nil, fmt.Errorf("decoding updated days of run %d: %w", r.ID, err)
	}
	r.DescriptionChanged = desc == 1
	r.ImagesChanged = images == 1
	r.Purged = purged == 1
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
