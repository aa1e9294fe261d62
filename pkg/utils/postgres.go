package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgxDriver = "pgx"

// PostgresConfig describes the audit database. The audit log writes one small
// row per request, so the pool stays small.
type PostgresConfig struct {
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// StartupWait bounds how long OpenPostgres keeps pinging a database that is still starting.
	StartupWait time.Duration
}

const (
	defaultPGMaxOpen     = 4
	defaultPGMaxIdle     = 2
	defaultPGLifetime    = 15 * time.Minute
	defaultPGStartupWait = 5 * time.Second

	pgPingInterval = 250 * time.Millisecond
)

// OpenPostgres opens DSN through the pgx stdlib driver and waits for it to answer.
// The DSN carries credentials and is never included in errors.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres: DATABASE_URL is empty")
	}

	db, err := sql.Open(pgxDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(positiveOr(cfg.MaxOpenConns, defaultPGMaxOpen))
	db.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, defaultPGMaxIdle))
	db.SetConnMaxLifetime(durationOr(cfg.ConnMaxLifetime, defaultPGLifetime))

	if err := WaitForPostgres(ctx, db, durationOr(cfg.StartupWait, defaultPGStartupWait)); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// WaitForPostgres pings db until it answers, wait elapses or ctx ends.
func WaitForPostgres(ctx context.Context, db *sql.DB, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	tick := time.NewTicker(pgPingInterval)
	defer tick.Stop()
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres: not reachable within %s: %w", wait, err)
		case <-tick.C:
		}
	}
}

// InTx runs fn in a read-committed transaction. Errors and panics roll back.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	if db == nil {
		return errors.New("postgres: db is nil")
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func durationOr(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
