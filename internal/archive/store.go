// Package archive persists finished extraction records to a local SQLite
// database so batch runs can be inspected and exported later.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MohammedZaid-AI/docextract/internal/common"
	"github.com/MohammedZaid-AI/docextract/internal/record"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS extraction_records (
	id                 TEXT PRIMARY KEY,
	source_name        TEXT NOT NULL,
	detected_type      TEXT NOT NULL,
	overall_confidence REAL NOT NULL,
	needs_review       INTEGER NOT NULL,
	payload            TEXT NOT NULL,
	created_at         TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_records_type ON extraction_records (detected_type);
CREATE INDEX IF NOT EXISTS idx_extraction_records_created ON extraction_records (created_at);
`

// Entry is one archived pipeline result.
type Entry struct {
	ID                string
	SourceName        string
	DetectedType      string
	OverallConfidence float32
	NeedsReview       bool
	Payload           json.RawMessage
	CreatedAt         time.Time
}

// Store wraps the SQLite connection.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the archive database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_OPEN", "failed to open archive database", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, common.NewAppError("ARCHIVE_INIT", "failed to initialize archive schema", err)
	}
	logger.Info("archive.open", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Save archives one frozen record and returns its generated id.
func (s *Store) Save(ctx context.Context, sourceName string, rec *record.Record) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", common.WrapError(err, "marshal record")
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extraction_records
		 (id, source_name, detected_type, overall_confidence, needs_review, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sourceName, string(rec.DetectedType), rec.OverallConfidence,
		boolToInt(rec.NeedsReview), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return "", common.NewAppError("ARCHIVE_WRITE", "failed to archive record", err)
	}
	s.logger.Debug("archive.saved", "id", id, "source", sourceName, "type", rec.DetectedType)
	return id, nil
}

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	DetectedType string
	From, To     time.Time
	ReviewOnly   bool
}

// List returns archived entries matching the filter, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	q := `SELECT id, source_name, detected_type, overall_confidence, needs_review, payload, created_at
	      FROM extraction_records WHERE 1=1`
	var args []any
	if f.DetectedType != "" {
		q += " AND detected_type = ?"
		args = append(args, f.DetectedType)
	}
	if !f.From.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		q += " AND created_at <= ?"
		args = append(args, f.To.UTC())
	}
	if f.ReviewOnly {
		q += " AND needs_review = 1"
	}
	q += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_READ", "failed to query archive", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			review  int
			payload string
		)
		if err := rows.Scan(&e.ID, &e.SourceName, &e.DetectedType, &e.OverallConfidence, &review, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.NeedsReview = review != 0
		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
