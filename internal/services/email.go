package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/api/validate"
	"github.com/hiver-ai/email-triage/internal/metrics"
	"github.com/hiver-ai/email-triage/internal/model"
	"github.com/hiver-ai/email-triage/internal/oracle"
	"github.com/hiver-ai/email-triage/internal/store"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// EmailServiceOptions tunes oracle usage. Zero values fall back to
// DefaultEmailServiceOptions.
type EmailServiceOptions struct {
	// OracleTimeout bounds each oracle call.
	OracleTimeout  time.Duration
	ClassifyParams oracle.Params
	ReplyParams    oracle.Params
	FeedbackParams oracle.Params
}

func DefaultEmailServiceOptions() EmailServiceOptions {
	return EmailServiceOptions{
		OracleTimeout:  30 * time.Second,
		ClassifyParams: oracle.Params{MaxTokens: 150, Temperature: 0.2},
		ReplyParams:    oracle.Params{MaxTokens: 500, Temperature: 0.7},
		FeedbackParams: oracle.Params{MaxTokens: 200, Temperature: 0.2},
	}
}

func (o EmailServiceOptions) withDefaults() EmailServiceOptions {
	d := DefaultEmailServiceOptions()
	if o.OracleTimeout <= 0 {
		o.OracleTimeout = d.OracleTimeout
	}
	if o.ClassifyParams == (oracle.Params{}) {
		o.ClassifyParams = d.ClassifyParams
	}
	if o.ReplyParams == (oracle.Params{}) {
		o.ReplyParams = d.ReplyParams
	}
	if o.FeedbackParams == (oracle.Params{}) {
		o.FeedbackParams = d.FeedbackParams
	}
	return o
}

// EmailService runs the email lifecycle: ingest and classify, reassign,
// draft and save replies, and score saved replies. It keeps no state of its
// own; every operation reads and writes through the store.
type EmailService struct {
	store  store.Store
	oracle oracle.Oracle
	opts   EmailServiceOptions
	log    zerolog.Logger
}

func NewEmailService(s store.Store, o oracle.Oracle, opts EmailServiceOptions, log zerolog.Logger) *EmailService {
	return &EmailService{store: s, oracle: o, opts: opts.withDefaults(), log: log}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, err.Error())
}

// Ingest validates, classifies, routes and stores a new email. A failed or
// unusable classification degrades to intent Other with an empty summary.
func (s *EmailService) Ingest(ctx context.Context, req model.IngestRequest) (*model.Email, error) {
	if err := validate.IngestEmail(req.Subject, req.Body, req.From, req.Timestamp); err != nil {
		return nil, invalid(err)
	}

	cls := s.classify(ctx, req)
	if cls.Fallback {
		metrics.ClassificationFallbacks.Inc()
		s.log.Warn().
			Str("from", req.From).
			Str("reason", cls.Reason).
			Msg("classification degraded to fallback")
	}

	e := &model.Email{
		Subject:        req.Subject,
		Body:           req.Body,
		From:           req.From,
		Timestamp:      req.Timestamp.UTC(),
		Intent:         cls.Intent,
		Summary:        cls.Summary,
		AssignedTeam:   model.TeamForIntent(cls.Intent),
		ManualOverride: false,
	}
	out, err := s.store.Emails().Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("store email: %w", err)
	}
	metrics.EmailsIngested.WithLabelValues(out.Intent).Inc()
	s.log.Info().
		Str("email_id", out.ID).
		Str("intent", out.Intent).
		Str("assigned_team", out.AssignedTeam).
		Bool("fallback", cls.Fallback).
		Msg("email ingested")
	return out, nil
}

func (s *EmailService) classify(ctx context.Context, req model.IngestRequest) oracle.Classification {
	raw, err := s.generate(ctx, metrics.PurposeClassify, classificationPrompt(req.Subject, req.From, req.Body), s.opts.ClassifyParams)
	if err != nil {
		return oracle.FallbackClassification(err.Error())
	}
	return oracle.ParseClassification(raw)
}

// generate calls the oracle under the configured timeout and records latency.
func (s *EmailService) generate(ctx context.Context, purpose, prompt string, p oracle.Params) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.OracleTimeout)
	defer cancel()

	s.log.Debug().Str("purpose", purpose).Str("prompt", prompt).Msg("oracle prompt")
	start := time.Now()
	out, err := s.oracle.Generate(callCtx, prompt, p)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OracleCallDuration.WithLabelValues(purpose, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Warn().Err(err).Str("purpose", purpose).Msg("oracle call failed")
		return "", err
	}
	s.log.Debug().Str("purpose", purpose).Str("completion", out).Msg("oracle completion")
	return out, nil
}

// Reassign routes an email to newTeam and marks the routing as a manual
// override. newTeam is not checked against the known teams.
func (s *EmailService) Reassign(ctx context.Context, id, newTeam string) (*model.Email, error) {
	newTeam = strings.TrimSpace(newTeam)
	if err := validate.Reassign(newTeam); err != nil {
		return nil, invalid(err)
	}
	out, err := s.store.Emails().Reassign(ctx, id, newTeam)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("reassign email: %w", err)
	}
	metrics.Reassignments.Inc()
	s.log.Info().Str("email_id", id).Str("assigned_team", newTeam).Msg("email reassigned")
	return out, nil
}

// GenerateReply drafts a reply for the stored email. The draft is not saved.
func (s *EmailService) GenerateReply(ctx context.Context, id string) (*model.ReplyDraft, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, metrics.PurposeReply, replyPrompt(e), s.opts.ReplyParams)
	if err != nil {
		return nil, fmt.Errorf("%w: draft reply: %v", model.ErrOracle, err)
	}
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return nil, fmt.Errorf("%w: draft reply: %v", model.ErrOracle, oracle.ErrEmptyCompletion)
	}
	return &model.ReplyDraft{
		EmailID:         e.ID,
		OriginalSubject: e.Subject,
		OriginalBody:    e.Body,
		GeneratedReply:  reply,
	}, nil
}

// SaveReply stores reply as the email's agent reply. Saving the same text
// again succeeds.
func (s *EmailService) SaveReply(ctx context.Context, id, reply string) error {
	if err := validate.Reply(reply); err != nil {
		return invalid(err)
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Emails().SetReply(ctx, id, reply); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("save reply for %s: %w", id, model.ErrNotModified)
		}
		return fmt.Errorf("save reply: %w", err)
	}
	metrics.RepliesSaved.Inc()
	s.log.Info().Str("email_id", id).Int("reply_len", len(reply)).Msg("agent reply saved")
	return nil
}

// GenerateFeedback rates the saved agent reply. It returns model.ErrNoReply
// when nothing has been saved yet.
func (s *EmailService) GenerateFeedback(ctx context.Context, id string) (*model.Feedback, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.HasReply() {
		return nil, model.ErrNoReply
	}
	raw, err := s.generate(ctx, metrics.PurposeFeedback, feedbackPrompt(*e.AgentReply), s.opts.FeedbackParams)
	if err != nil {
		return nil, fmt.Errorf("%w: feedback: %v", model.ErrOracle, err)
	}
	fb, ok := oracle.ParseFeedback(raw)
	if !ok {
		s.log.Warn().Str("email_id", id).Str("completion", raw).Msg("unparseable feedback")
		return nil, fmt.Errorf("%w: feedback: unparseable completion", model.ErrOracle)
	}
	return &fb, nil
}

func (s *EmailService) Get(ctx context.Context, id string) (*model.Email, error) {
	return s.load(ctx, id)
}

// ListRecent returns up to limit emails, newest first. limit <= 0 uses
// DefaultListLimit; larger values are capped at MaxListLimit.
func (s *EmailService) ListRecent(ctx context.Context, limit int) ([]*model.Email, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	out, err := s.store.Emails().List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	if out == nil {
		out = []*model.Email{}
	}
	return out, nil
}

func (s *EmailService) RandomSample(ctx context.Context) (*model.Email, error) {
	e, err := s.store.Emails().Sample(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("sample email: %w", err)
	}
	return e, nil
}

func (s *EmailService) load(ctx context.Context, id string) (*model.Email, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.ErrNotFound
	}
	e, err := s.store.Emails().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load email: %w", err)
	}
	return e, nil
}
