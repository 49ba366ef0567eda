package inbox

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/metrics"
	"github.com/hiver-ai/email-triage/internal/model"
)

// Outcome labels for metrics.InboxMessages.
const (
	resultIngested       = "ingested"
	resultInvalid        = "invalid"
	resultFailed         = "failed"
	resultMarkSeenFailed = "mark_seen_failed"
)

// Ingester is the lifecycle entry point the poller feeds.
type Ingester interface {
	Ingest(ctx context.Context, req model.IngestRequest) (*model.Email, error)
}

// Poller periodically drains unseen messages into the Ingester. Every
// message is attempted once: it is marked seen whatever the outcome, and
// invalid or failed messages are logged and counted instead of retried.
type Poller struct {
	dial     Dialer
	ingest   Ingester
	interval time.Duration
	log      zerolog.Logger
}

func NewPoller(dial Dialer, ingest Ingester, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{dial: dial, ingest: ingest, interval: interval, log: log}
}

// Start polls immediately and then every interval until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Msg("mailbox poller started")
	for {
		if n, err := p.PollOnce(ctx); err != nil {
			p.log.Error().Err(err).Msg("mailbox poll failed")
		} else if n > 0 {
			p.log.Info().Int("ingested", n).Msg("mailbox poll complete")
		}
		select {
		case <-ctx.Done():
			p.log.Info().Msg("mailbox poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// PollOnce runs one session and returns how many messages were ingested.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	mb, err := p.dial()
	if err != nil {
		return 0, err
	}
	defer func() { _ = mb.Close() }()

	uids, err := mb.ListUnseen()
	if err != nil {
		return 0, err
	}

	ingested := 0
	for _, uid := range uids {
		if ctx.Err() != nil {
			return ingested, ctx.Err()
		}
		result := p.process(ctx, mb, uid)
		metrics.InboxMessages.WithLabelValues(result).Inc()
		if result == resultIngested {
			ingested++
		}
		if err := mb.MarkSeen(uid); err != nil {
			metrics.InboxMessages.WithLabelValues(resultMarkSeenFailed).Inc()
			p.log.Error().Err(err).Uint32("uid", uid).Str("result", result).
				Msg("mark seen failed; message will be attempted again next cycle")
		}
	}
	return ingested, nil
}

// process fetches, parses and ingests one message and reports the outcome
// as an inbox metric label.
func (p *Poller) process(ctx context.Context, mb Mailbox, uid uint32) string {
	log := p.log.With().Uint32("uid", uid).Logger()

	raw, received, err := mb.Fetch(uid)
	if err != nil {
		log.Error().Err(err).Msg("fetch message")
		return resultFailed
	}
	req, err := Parse(raw, received)
	if err != nil {
		log.Warn().Err(err).Msg("unparseable message skipped")
		return resultInvalid
	}

	e, err := p.ingest.Ingest(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			log.Warn().Err(err).Str("from", req.From).Msg("invalid message skipped")
			return resultInvalid
		}
		log.Error().Err(err).Str("from", req.From).Msg("ingest message")
		return resultFailed
	}
	log.Debug().Str("email_id", e.ID).Msg("message ingested")
	return resultIngested
}
