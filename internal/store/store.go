package store

import (
	"context"

	"github.com/hiver-ai/email-triage/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (mongo, postgres, sqlite).
type Store interface {
	Emails() Emails
}

// Emails persists email records. Every method that takes an id returns
// model.ErrNotFound both for unknown ids and for ids that are malformed for
// the driver's id format.
type Emails interface {
	// Create assigns a new id and stores e. The returned record is the stored one.
	Create(ctx context.Context, e *model.Email) (*model.Email, error)
	GetByID(ctx context.Context, id string) (*model.Email, error)
	// List returns up to limit records, newest timestamp first.
	List(ctx context.Context, limit int) ([]*model.Email, error)
	// Sample returns one record chosen at random.
	Sample(ctx context.Context) (*model.Email, error)
	// Reassign sets assigned_team and manual_override=true and returns the updated record.
	Reassign(ctx context.Context, id, team string) (*model.Email, error)
	// SetReply writes agent_reply. It returns model.ErrNotFound when no record
	// matched the id.
	SetReply(ctx context.Context, id, reply string) error
}
