package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/hiver-ai/email-triage/internal/store"
	"github.com/hiver-ai/email-triage/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("EMAIL_TRIAGE_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EMAIL_TRIAGE_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE emails`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewWithDB(db)
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore, "12345")
}
