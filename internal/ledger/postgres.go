package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

// Postgres implements Ledger on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// OpenPostgres creates a tuned pgx pool and verifies connectivity.
func OpenPostgres(ctx context.Context, cfg common.LedgerConfig, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("ledger.pg.parse_config_failed", "error", err)
		return nil, err
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "billsd"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("ledger.pg.connect_failed", "error", err)
		return nil, err
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		logger.Error("ledger.pg.ping_failed", "error", err)
		return nil, err
	}
	logger.Info("ledger.pg.connected")
	return &Postgres{pool: pool, log: logger}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureSchema creates the processing_queue table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS processing_queue (
			filename   TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			error      TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return common.WrapError(err, "ensure processing_queue schema")
}

func (p *Postgres) Active(ctx context.Context) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx,
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

func (p *Postgres) Claim(ctx context.Context, filename string) (bool, error) {
	// Conditional upsert: only absent or terminal rows can be taken. A row held
	// by another run is left untouched and the claim reports false.
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO processing_queue (filename, status, error, updated_at)
		VALUES ($1, 'processing', NULL, now())
		ON CONFLICT (filename) DO UPDATE
		SET status = 'processing', error = NULL, updated_at = now()
		WHERE processing_queue.status IN ('completed', 'failed')`,
		filename)
	if err != nil {
		return false, common.WrapError(err, "claim queue entry")
	}
	claimed := tag.RowsAffected() > 0
	if !claimed {
		p.log.Debug("ledger.claim.lost", "filename", filename)
	}
	return claimed, nil
}

func (p *Postgres) Upsert(ctx context.Context, entry Entry) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO processing_queue (filename, status, error, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), now())
		ON CONFLICT (filename) DO UPDATE
		SET status = excluded.status, error = excluded.error, updated_at = now()`,
		entry.Filename, string(entry.Status), entry.Error)
	if err != nil {
		p.log.Error("ledger.upsert.failed", "filename", entry.Filename, "error", err)
		return common.WrapError(err, "upsert queue entry")
	}
	return nil
}

// Ping checks connectivity, for startup health checks.
func (p *Postgres) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return p.pool.Ping(ctx)
}
