package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// AuditStore keeps a durable trail of decisions: one row per entity per
// run, with the serialized evidence bag for later review.
type AuditStore struct {
	db *sql.DB
}

// OpenAuditStore opens (or creates) the SQLite audit database.
func OpenAuditStore(path string) (*AuditStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("audit: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initAuditSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: init schema: %w", err)
	}
	return &AuditStore{db: db}, nil
}

func initAuditSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS decisions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		entity      TEXT NOT NULL,
		minimum_age INTEGER NOT NULL,
		source      TEXT NOT NULL,
		note        TEXT NOT NULL,
		decided_at  TEXT NOT NULL,
		evidence    TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_decisions_entity ON decisions(entity)`)
	return err
}

// Record appends one decision with its evidence blob.
func (s *AuditStore) Record(ctx context.Context, entity string, d Decision, evidence []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (entity, minimum_age, source, note, decided_at, evidence)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity, d.MinimumAge, d.Source, d.Note,
		d.Timestamp.UTC().Format(time.RFC3339), string(evidence))
	if err != nil {
		return fmt.Errorf("audit: record %s: %w", entity, err)
	}
	return nil
}

// Latest returns the most recent decision recorded for an entity.
func (s *AuditStore) Latest(ctx context.Context, entity string) (Decision, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT minimum_age, source, note, decided_at FROM decisions
		 WHERE entity = ? ORDER BY id DESC LIMIT 1`, entity)

	var d Decision
	var decidedAt string
	if err := row.Scan(&d.MinimumAge, &d.Source, &d.Note, &decidedAt); err != nil {
		if err == sql.ErrNoRows {
			return Decision{}, false, nil
		}
		return Decision{}, false, fmt.Errorf("audit: latest %s: %w", entity, err)
	}
	if ts, err := time.Parse(time.RFC3339, decidedAt); err == nil {
		d.Timestamp = ts
	}
	return d, true, nil
}

// Close closes the underlying database.
func (s *AuditStore) Close() error {
	return s.db.Close()
}
