package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hiver-ai/email-triage/internal/model"
	"github.com/hiver-ai/email-triage/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS emails (
    id              UUID PRIMARY KEY,
    subject         TEXT NOT NULL,
    body            TEXT NOT NULL,
    sender          TEXT NOT NULL,
    received_at     TIMESTAMPTZ NOT NULL,
    intent          TEXT NOT NULL,
    summary         TEXT NOT NULL DEFAULT '',
    assigned_team   TEXT NOT NULL,
    manual_override BOOLEAN NOT NULL DEFAULT FALSE,
    agent_reply     TEXT
)`

const selectColumns = `id, subject, body, sender, received_at, intent, summary, assigned_team, manual_override, agent_reply`

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the emails table and its ordering index if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS emails_received_at_idx ON emails (received_at DESC)`)
	return err
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Emails() store.Emails { return &emails{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check and applies the schema.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}

	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return EnsureSchema(ctx, db)
}

type emails struct{ db *sql.DB }

func (e *emails) Create(ctx context.Context, m *model.Email) (*model.Email, error) {
	id := uuid.New().String()
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO emails (id, subject, body, sender, received_at, intent, summary, assigned_team, manual_override)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE)
        RETURNING `+selectColumns,
		id, m.Subject, m.Body, m.From, m.Timestamp.UTC(), m.Intent, m.Summary, m.AssignedTeam)
	return scanEmail(row)
}

func (e *emails) GetByID(ctx context.Context, id string) (*model.Email, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}
	row := e.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM emails WHERE id=$1`, id)
	return scanEmail(row)
}

func (e *emails) List(ctx context.Context, limit int) ([]*model.Email, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT `+selectColumns+`
        FROM emails ORDER BY received_at DESC LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Email
	for rows.Next() {
		m, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (e *emails) Sample(ctx context.Context) (*model.Email, error) {
	row := e.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM emails ORDER BY random() LIMIT 1`)
	return scanEmail(row)
}

func (e *emails) Reassign(ctx context.Context, id, team string) (*model.Email, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}
	row := e.db.QueryRowContext(ctx, `
        UPDATE emails SET assigned_team=$2, manual_override=TRUE
        WHERE id=$1
        RETURNING `+selectColumns, id, team)
	return scanEmail(row)
}

func (e *emails) SetReply(ctx context.Context, id, reply string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.ErrNotFound
	}
	res, err := e.db.ExecContext(ctx, `UPDATE emails SET agent_reply=$2 WHERE id=$1`, id, reply)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmail(row scanner) (*model.Email, error) {
	var out model.Email
	var reply *string
	err := row.Scan(&out.ID, &out.Subject, &out.Body, &out.From, &out.Timestamp, &out.Intent, &out.Summary, &out.AssignedTeam, &out.ManualOverride, &reply)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.Timestamp = out.Timestamp.UTC()
	out.AgentReply = reply
	return &out, nil
}
