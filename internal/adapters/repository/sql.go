package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// SQL drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
    name       TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// sqlBackend keeps one row per collection key.
type sqlBackend struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens a store over a database/sql driver ("sqlite3" or "postgres").
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, ioErr("open", "", err)
	}
	if driver == DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, ioErr("ping", "", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, ioErr("migrate", "", err)
	}

	s, err := newStore(ctx, &sqlBackend{db: db, driver: driver}, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (b *sqlBackend) name() string { return b.driver }

func (b *sqlBackend) read(ctx context.Context, c model.Collection) ([]byte, error) {
	var payload string
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE name = $1`, c.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (b *sqlBackend) write(ctx context.Context, c model.Collection, payload []byte) error {
	return upsert(ctx, b.db, c, payload)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, c model.Collection, payload []byte) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO collections (name, payload, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		c.String(), string(payload))
	return err
}

func (b *sqlBackend) empty(ctx context.Context) (bool, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func (b *sqlBackend) init(ctx context.Context, doc map[model.Collection]json.RawMessage) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, c := range model.Collections() {
		if err := upsert(ctx, tx, c, doc[c]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (b *sqlBackend) close() error { return b.db.Close() }
