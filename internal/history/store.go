// Package history records past searches in a SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

//go:embed schema.sql
var schemaSQL string

// Status values stored with each record.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Record is one search invocation.
type Record struct {
	ID           int64         `yaml:"-"`
	RunID        string        `yaml:"run_id"`
	Mode         string        `yaml:"mode"`
	Pattern      string        `yaml:"pattern"`
	IgnoreCase   bool          `yaml:"ignore_case"`
	Source       string        `yaml:"source"`
	Destination  string        `yaml:"destination,omitempty"`
	Matches      int           `yaml:"matches"`
	LinesScanned int           `yaml:"lines_scanned"`
	Status       string        `yaml:"status"`
	Error        string        `yaml:"error,omitempty"`
	Duration     time.Duration `yaml:"duration"`
	CreatedAt    time.Time     `yaml:"created_at"`
}

// Store manages the SQLite database for search history
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (or creates) the database at dbPath and applies the schema.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Record inserts rec. A missing RunID is generated and a zero CreatedAt is set
// to the current time; both are written back to rec along with the new ID.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Status == "" {
		rec.Status = StatusSuccess
	}

	query := `INSERT INTO searches
		(run_id, mode, pattern, ignore_case, source, destination, matches, lines_scanned, status, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		rec.RunID,
		rec.Mode,
		rec.Pattern,
		rec.IgnoreCase,
		rec.Source,
		rec.Destination,
		rec.Matches,
		rec.LinesScanned,
		rec.Status,
		rec.Error,
		rec.Duration.Milliseconds(),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	rec.ID = id

	return nil
}

// List returns the most recent records first. limit <= 0 returns all records.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := `SELECT id, run_id, mode, pattern, ignore_case, source, destination, matches, lines_scanned, status, error_message, duration_ms, created_at
		FROM searches
		ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query search records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var durationMs int64
		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Mode,
			&rec.Pattern,
			&rec.IgnoreCase,
			&rec.Source,
			&rec.Destination,
			&rec.Matches,
			&rec.LinesScanned,
			&rec.Status,
			&rec.Error,
			&durationMs,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan search record: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search records: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM searches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count search records: %w", err)
	}
	return count, nil
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM searches`)
	if err != nil {
		return 0, fmt.Errorf("clear search records: %w", err)
	}
	return result.RowsAffected()
}

// Prune deletes records older than keepDays days. keepDays <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	result, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune search records: %w", err)
	}
	return result.RowsAffected()
}

// exportDocument is the top-level shape of an exported history file.
type exportDocument struct {
	ExportedAt time.Time `yaml:"exported_at"`
	Searches   []*Record `yaml:"searches"`
}

// MarshalYAML renders records as a YAML document for export.
func MarshalYAML(records []*Record) ([]byte, error) {
	doc := exportDocument{
		ExportedAt: time.Now().UTC(),
		Searches:   records,
	}
	if doc.Searches == nil {
		doc.Searches = []*Record{}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return data, nil
}
