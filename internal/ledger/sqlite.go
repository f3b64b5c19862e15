package ledger

import (
	"context"
	"database/sql"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

// SQLite implements Ledger on a local database file. Used by the one-shot CLI
// and in tests; same table contract as the Postgres implementation.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite ledger")
	}
	// The sqlite driver is single-writer; serialize access through one conn.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS processing_queue (
			filename   TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			error      TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ensure processing_queue schema")
	}
	return &SQLite{db: db, log: logger}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Active(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename FROM processing_queue WHERE status IN ('pending', 'processing')`)
	if err != nil {
		return nil, common.WrapError(err, "query active queue entries")
	}
	defer rows.Close()

	active := make(map[string]struct{})
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, common.WrapError(err, "scan queue entry")
		}
		active[filename] = struct{}{}
	}
	return active, rows.Err()
}

func (s *SQLite) Claim(ctx context.Context, filename string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_queue (filename, status, error, updated_at)
		VALUES (?, 'processing', NULL, CURRENT_TIMESTAMP)
		ON CONFLICT (filename) DO UPDATE
		SET status = 'processing', error = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE processing_queue.status IN ('completed', 'failed')`,
		filename)
	if err != nil {
		return false, common.WrapError(err, "claim queue entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.WrapError(err, "claim rows affected")
	}
	claimed := n > 0
	if !claimed {
		s.log.Debug("ledger.claim.lost", "filename", filename)
	}
	return claimed, nil
}

func (s *SQLite) Upsert(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_queue (filename, status, error, updated_at)
		VALUES (?, ?, NULLIF(?, ''), CURRENT_TIMESTAMP)
		ON CONFLICT (filename) DO UPDATE
		SET status = excluded.status, error = excluded.error, updated_at = CURRENT_TIMESTAMP`,
		entry.Filename, string(entry.Status), entry.Error)
	if err != nil {
		s.log.Error("ledger.upsert.failed", "filename", entry.Filename, "error", err)
		return common.WrapError(err, "upsert queue entry")
	}
	return nil
}
