package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hiver-ai/email-triage/internal/model"
)

// lookupEmails answers GetByID only; other methods panic through the nil
// embedded interface.
type lookupEmails struct {
	Emails
	err    error
	gotIDs []string
}

func (e *lookupEmails) GetByID(_ context.Context, id string) (*model.Email, error) {
	e.gotIDs = append(e.gotIDs, id)
	return nil, e.err
}

type lookupStore struct {
	emails lookupEmails
}

func (s *lookupStore) Emails() Emails { return &s.emails }

type pingStore struct {
	lookupStore
	pingErr error
}

func (s *pingStore) HealthPing(context.Context) error { return s.pingErr }

func probeOnce(s Store) bool {
	hc := NewStoreHealthChecker(s, zerolog.Nop(), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hc.Start(ctx, time.Hour)
	return hc.IsHealthy()
}

func TestStoreHealthChecker_NotFoundLookupIsHealthy(t *testing.T) {
	s := &lookupStore{emails: lookupEmails{err: model.ErrNotFound}}
	assert.True(t, probeOnce(s))
	assert.Equal(t, []string{healthProbeID}, s.emails.gotIDs)
}

func TestStoreHealthChecker_LookupFailure(t *testing.T) {
	assert.False(t, probeOnce(&lookupStore{emails: lookupEmails{err: errors.New("connection refused")}}))
}

func TestStoreHealthChecker_PrefersHealthPing(t *testing.T) {
	s := &pingStore{}
	assert.True(t, probeOnce(s))
	assert.Empty(t, s.emails.gotIDs)

	assert.False(t, probeOnce(&pingStore{pingErr: errors.New("down")}))
}
