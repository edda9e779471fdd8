// Package pages stores wiki pages as plain wikitext files.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrPageNotFound is returned for pages that do not exist in a store.
var ErrPageNotFound = errors.New("page not found")

const (
	pageExt = ".wiki"
	editLog = "edits.log"
)

// Store reads and writes pages by title.
type Store interface {
	Text(ctx context.Context, title string) (string, error)
	Save(ctx context.Context, title, text, summary string) error
	Purge(ctx context.Context, title string) error
}

// DirStore keeps one file per page in a directory. Saves and purges are
// appended to edits.log in the same directory.
type DirStore struct {
	dir string
	now func() time.Time
}

// NewDirStore creates the directory if needed and returns a store on it.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}
	return &DirStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory backing the store.
func (s *DirStore) Dir() string {
	return s.dir
}

// Path returns the file path used for title.
func (s *DirStore) Path(title string) string {
	return filepath.Join(s.dir, url.PathEscape(title)+pageExt)
}

// Text returns the wikitext of title.
func (s *DirStore) Text(ctx context.Context, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(title))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", title, ErrPageNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", title, err)
	}
	return string(data), nil
}

// Save replaces the text of title and logs the edit summary.
func (s *DirStore) Save(ctx context.Context, title, text, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(title)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", title, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %q: %w", title, err)
	}
	slog.Info("saved page", "title", title, "bytes", len(text))
	return s.log("save", title, summary)
}

// Purge records a cache purge for title. A directory has no render cache,
// so the log line is the whole effect.
func (s *DirStore) Purge(ctx context.Context, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("purged page", "title", title)
	return s.log("purge", title, "")
}

// List returns the titles of all pages in the store.
func (s *DirStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	var titles []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, pageExt) {
			continue
		}
		title, err := url.PathUnescape(strings.TrimSuffix(name, pageExt))
		if err != nil {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func (s *DirStore) log(action, title, summary string) error {
	f, err := os.OpenFile(filepath.Join(s.dir, editLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening edit log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\t%s\n", s.now().UTC().Format(time.RFC3339), action, title, summary)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing edit log: %w", err)
	}
	return nil
}
