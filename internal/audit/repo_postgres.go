package audit

import (
	"context"
	"database/sql"
	"errors"

	"github.com/D-ignite/webex-cdr/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS gateway_query_events (
	id          UUID PRIMARY KEY,
	type        TEXT NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	ip_address  TEXT NOT NULL DEFAULT '',
	route       TEXT NOT NULL,
	status      INTEGER NOT NULL,
	params      JSONB,
	duration_ms BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS gateway_query_events_created_at_idx ON gateway_query_events (created_at);
`

const insertEvent = `
INSERT INTO gateway_query_events
	(id, type, request_id, subject, ip_address, route, status, params, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// PostgresRepo appends events to gateway_query_events. It has no update or delete path.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// EnsureSchema creates the events table if it does not exist.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errors.New("audit: postgres db is nil")
	}
	return utils.InTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, schema)
		return err
	})
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	if r.db == nil {
		return errors.New("audit: postgres db is nil")
	}
	var params any
	if e.Params != "" {
		params = e.Params
	}
	_, err := r.db.ExecContext(ctx, insertEvent,
		e.ID, string(e.Type), e.RequestID, e.Subject, e.IPAddress,
		e.Route, e.Status, params, e.DurationMS, e.CreatedAt,
	)
	return err
}
