package app

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/sample"
	"github.com/hyperifyio/sentlen/internal/store"
	"github.com/hyperifyio/sentlen/internal/table"
)

// LoadTable reads a metric table from a CSV file or, for .db/.sqlite paths,
// from a SQLite database. A missing SQLite file is reported like a missing
// CSV file instead of being created empty.
func LoadTable(ctx context.Context, path string) (*table.Table, error) {
	if !isSQLitePath(path) {
		return table.ReadFile(path)
	}
	s, err := openExisting(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	t, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadWindows reads only the records published inside one of ws. SQLite
// tables are filtered by the database.
func LoadWindows(ctx context.Context, path string, ws ...corpus.TimeWindow) (*table.Table, error) {
	out := table.New()
	if !isSQLitePath(path) {
		t, err := table.ReadFile(path)
		if err != nil {
			return nil, err
		}
		recs := t.Records()
		for _, w := range ws {
			for _, r := range sample.Filter(recs, w) {
				out.Insert(r)
			}
		}
		return out, nil
	}
	s, err := openExisting(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	for _, w := range ws {
		recs, err := s.InWindow(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, r := range recs {
			out.Insert(r)
		}
	}
	return out, nil
}

func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return store.Open(path)
}

// SaveTable writes t to path in the format chosen by its extension.
func SaveTable(ctx context.Context, path string, t *table.Table) error {
	if !isSQLitePath(path) {
		return table.WriteFile(path, t)
	}
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, t); err != nil {
		s.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return s.Close()
}
