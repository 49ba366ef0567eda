package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiver-ai/email-triage/internal/model"
	"github.com/hiver-ai/email-triage/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
// malformedID must be an id the driver cannot parse.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store, malformedID string) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	// Empty store
	if _, err := s.Emails().Sample(ctx); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Sample on empty store: want ErrNotFound, got %v", err)
	}

	// Create
	in := &model.Email{
		Subject:      "Refund please",
		Body:         "I was charged twice for order #1234.",
		From:         "jane@example.com",
		Timestamp:    base,
		Intent:       model.IntentRefund,
		Summary:      "Customer double charged, wants refund.",
		AssignedTeam: "refunds_team",
	}
	created, err := s.Emails().Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("Create: empty id")
	}
	if created.ManualOverride || created.AgentReply != nil {
		t.Fatalf("Create: unexpected derived fields %+v", created)
	}

	got, err := s.Emails().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Subject != in.Subject || got.Body != in.Body || got.From != in.From ||
		got.Intent != in.Intent || got.Summary != in.Summary || got.AssignedTeam != in.AssignedTeam {
		t.Fatalf("GetByID: round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Equal(base) {
		t.Fatalf("GetByID: timestamp want %v got %v", base, got.Timestamp)
	}

	// Unknown and malformed ids are both not found
	if _, err := s.Emails().GetByID(ctx, malformedID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByID malformed: want ErrNotFound, got %v", err)
	}
	if _, err := s.Emails().Reassign(ctx, malformedID, "ops_team"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Reassign malformed: want ErrNotFound, got %v", err)
	}
	if err := s.Emails().SetReply(ctx, malformedID, "hi"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("SetReply malformed: want ErrNotFound, got %v", err)
	}

	// Reassign
	re, err := s.Emails().Reassign(ctx, created.ID, "vip_team")
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if re.AssignedTeam != "vip_team" || !re.ManualOverride {
		t.Fatalf("Reassign: got team=%q override=%v", re.AssignedTeam, re.ManualOverride)
	}
	if re.ID != created.ID || re.Intent != model.IntentRefund {
		t.Fatalf("Reassign: identity or intent changed: %+v", re)
	}

	// SetReply, including an identical re-save
	const reply = "Hi Jane, we have refunded the duplicate charge."
	for i := 0; i < 2; i++ {
		if err := s.Emails().SetReply(ctx, created.ID, reply); err != nil {
			t.Fatalf("SetReply #%d: %v", i+1, err)
		}
	}
	got, err = s.Emails().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID after SetReply: %v", err)
	}
	if got.AgentReply == nil || *got.AgentReply != reply {
		t.Fatalf("SetReply: stored reply mismatch: %v", got.AgentReply)
	}

	// List ordering and limit
	for i := 1; i <= 3; i++ {
		e := *in
		e.Subject = "Follow-up"
		e.Timestamp = base.Add(time.Duration(i) * time.Hour)
		if _, err := s.Emails().Create(ctx, &e); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}
	all, err := s.Emails().List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("List: want 4 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Fatalf("List: not newest first at %d", i)
		}
	}
	limited, err := s.Emails().List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("List limit: n=%d err=%v", len(limited), err)
	}

	// Sample
	sample, err := s.Emails().Sample(ctx)
	if err != nil || sample == nil || sample.ID == "" {
		t.Fatalf("Sample: got=%v err=%v", sample, err)
	}
}
