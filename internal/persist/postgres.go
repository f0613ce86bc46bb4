package persist

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresTimeout = 3 * time.Second

const postgresSchema = `
CREATE TABLE IF NOT EXISTS storefront_state (
	key        text PRIMARY KEY,
	value      bytea NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// Postgres stores blobs in a single key/value table.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
}

// OpenPostgres connects with the pgx driver and ensures the state table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	pingCtx, cancel := context.WithTimeout(ctx, postgresTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if _, err := db.ExecContext(pingCtx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create state table")
	}
	return &Postgres{db: db, timeout: postgresTimeout}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Read(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM storefront_state WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select state")
	}
	return data, nil
}

func (p *Postgres) Write(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `
INSERT INTO storefront_state (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, key, data)
	if err != nil {
		return errors.Wrap(err, "upsert state")
	}
	return nil
}

func (p *Postgres) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if _, err := p.db.ExecContext(ctx, `DELETE FROM storefront_state WHERE key = $1`, key); err != nil {
		return errors.Wrap(err, "delete state")
	}
	return nil
}
