package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hiver-ai/email-triage/internal/store"
	"github.com/hiver-ai/email-triage/internal/store/storetest"
)

func makeSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewWithDB(db)
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeSQLiteStore, "not-a-uuid")
}

func TestSQLiteStore_InMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	s := NewWithDB(db)
	if p, ok := s.(interface{ HealthPing(context.Context) error }); !ok {
		t.Fatalf("sqlite store should implement HealthPing")
	} else if err := p.HealthPing(context.Background()); err != nil {
		t.Fatalf("HealthPing: %v", err)
	}
}
