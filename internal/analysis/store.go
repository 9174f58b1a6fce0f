package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const createTable = `
CREATE TABLE IF NOT EXISTS adsorption (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	record     TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);`

// StoreSink inserts records into the adsorption table of a sqlite results
// database.
type StoreSink struct {
	db *sql.DB
}

// NewStoreSink opens (creating if needed) the results database at path.
func NewStoreSink(path string) (*StoreSink, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening results database %s: %w", path, err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating results database: %w", err)
	}
	return &StoreSink{db: db}, nil
}

// Persist implements Sink.
func (s *StoreSink) Persist(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding analysis record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO adsorption (record, created_at) VALUES (?, ?)",
		string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting analysis record: %w", err)
	}
	return nil
}

// Count reports the number of stored records.
func (s *StoreSink) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM adsorption").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the database handle.
func (s *StoreSink) Close() error { return s.db.Close() }
