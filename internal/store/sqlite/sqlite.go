package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hiver-ai/email-triage/internal/model"
	"github.com/hiver-ai/email-triage/internal/store"
)

// timeLayout is fixed width so that lexical order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var schema = []string{`
CREATE TABLE IF NOT EXISTS emails (
    id              TEXT PRIMARY KEY,
    subject         TEXT NOT NULL,
    body            TEXT NOT NULL,
    sender          TEXT NOT NULL,
    received_at     TEXT NOT NULL,
    intent          TEXT NOT NULL,
    summary         TEXT NOT NULL DEFAULT '',
    assigned_team   TEXT NOT NULL,
    manual_override INTEGER NOT NULL DEFAULT 0,
    agent_reply     TEXT
)`,
	`CREATE INDEX IF NOT EXISTS emails_received_at_idx ON emails (received_at DESC)`,
}

const selectColumns = `id, subject, body, sender, received_at, intent, summary, assigned_team, manual_override, agent_reply`

// Open opens (or creates) a SQLite database file. The special path ":memory:"
// yields a single-connection in-memory database.
func Open(path string) (*sql.DB, error) {
	if path == ":memory:" {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the emails table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewWithDB constructs a SQLite store on an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Emails() store.Emails { return &emails{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type emails struct{ db *sql.DB }

func (e *emails) Create(ctx context.Context, m *model.Email) (*model.Email, error) {
	out := *m
	out.ID = uuid.New().String()
	out.ManualOverride = false
	out.AgentReply = nil
	_, err := e.db.ExecContext(ctx, `
        INSERT INTO emails (id, subject, body, sender, received_at, intent, summary, assigned_team, manual_override)
        VALUES (?,?,?,?,?,?,?,?,0)
    `, out.ID, out.Subject, out.Body, out.From, formatTime(out.Timestamp), out.Intent, out.Summary, out.AssignedTeam)
	if err != nil {
		return nil, err
	}
	out.Timestamp = out.Timestamp.UTC()
	return &out, nil
}

func (e *emails) GetByID(ctx context.Context, id string) (*model.Email, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}
	row := e.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM emails WHERE id = ?`, id)
	return scanEmail(row)
}

func (e *emails) List(ctx context.Context, limit int) ([]*model.Email, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM emails ORDER BY received_at DESC LIMIT ?`, limit)
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
	row := e.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM emails ORDER BY RANDOM() LIMIT 1`)
	return scanEmail(row)
}

func (e *emails) Reassign(ctx context.Context, id, team string) (*model.Email, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.ErrNotFound
	}
	res, err := e.db.ExecContext(ctx, `UPDATE emails SET assigned_team = ?, manual_override = 1 WHERE id = ?`, team, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, model.ErrNotFound
	}
	return e.GetByID(ctx, id)
}

func (e *emails) SetReply(ctx context.Context, id, reply string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.ErrNotFound
	}
	res, err := e.db.ExecContext(ctx, `UPDATE emails SET agent_reply = ? WHERE id = ?`, reply, id)
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
	var (
		out      model.Email
		received string
		override int64
		reply    sql.NullString
	)
	err := row.Scan(&out.ID, &out.Subject, &out.Body, &out.From, &received, &out.Intent, &out.Summary, &out.AssignedTeam, &override, &reply)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ts, err := time.Parse(timeLayout, received)
	if err != nil {
		return nil, fmt.Errorf("parse received_at %q: %w", received, err)
	}
	out.Timestamp = ts
	out.ManualOverride = override != 0
	if reply.Valid {
		r := reply.String
		out.AgentReply = &r
	}
	return &out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
