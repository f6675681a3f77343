// Package catalog keeps durable bookkeeping for completed WOD artifacts
// in a sqlite database, so the downstream ingestion queue can be audited
// after the files themselves have been picked up.
package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Artifact describes one rotated WOD file.
type Artifact struct {
	ID             int64
	RotatedAt      time.Time
	Name           string
	SizeBytes      int64
	FrameCount     int64
	FirstTimestamp sql.NullInt64
	LastTimestamp  sql.NullInt64
}

// Store handles catalog database operations. Connections open lazily on
// first use.
type Store struct {
	dbPath string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a catalog store for the database at dbPath. The schema is
// initialized on first use.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", s.dbPath)
		if err != nil {
			s.dbErr = err
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = err
			return
		}

		s.db = db
	})

	return s.db, s.dbErr
}

const insertArtifactSQL = `
INSERT INTO artifacts (rotated_at, name, size_bytes, frame_count, first_timestamp, last_timestamp)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)`

// RecordArtifact inserts one completed artifact and returns its row ID.
func (s *Store) RecordArtifact(a Artifact) (artifactID int64, err error) {
	db, err := s.getDB()
	if err != nil {
		err = fmt.Errorf("getting connection: %w", err)
		return
	}

	stmt, err := db.Prepare(insertArtifactSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer func() {
		if cErr := stmt.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cErr)
		}
	}()

	result, err := stmt.Exec(a.Name, a.SizeBytes, a.FrameCount, a.FirstTimestamp, a.LastTimestamp)
	if err != nil {
		err = fmt.Errorf("inserting artifact: %w", err)
		return
	}

	return result.LastInsertId()
}

const selectArtifactsSQL = `
SELECT
    id,
    rotated_at,
    name,
    size_bytes,
    frame_count,
    first_timestamp,
    last_timestamp
FROM artifacts
ORDER BY rotated_at, id`

// Artifacts returns every recorded artifact in rotation order.
func (s *Store) Artifacts() (artifacts []Artifact, err error) {
	db, err := s.getDB()
	if err != nil {
		err = fmt.Errorf("getting connection: %w", err)
		return
	}

	rows, err := db.Query(selectArtifactsSQL)
	if err != nil {
		err = fmt.Errorf("querying artifacts: %w", err)
		return
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cErr)
		}
	}()

	for rows.Next() {
		var a Artifact
		if err = rows.Scan(&a.ID, &a.RotatedAt, &a.Name, &a.SizeBytes, &a.FrameCount, &a.FirstTimestamp, &a.LastTimestamp); err != nil {
			err = fmt.Errorf("scanning artifact: %w", err)
			return
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// Close releases the database connection. It is safe to call multiple
// times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}
