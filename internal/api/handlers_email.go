package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	respond "github.com/hiver-ai/email-triage/internal/api/respond"
	"github.com/hiver-ai/email-triage/internal/model"
	"github.com/hiver-ai/email-triage/internal/services"
)

// EmailHandler is the HTTP transport for EmailService.
type EmailHandler struct {
	svc *services.EmailService
	log zerolog.Logger
}

func NewEmailHandler(svc *services.EmailService, log zerolog.Logger) *EmailHandler {
	return &EmailHandler{svc: svc, log: log}
}

// writeServiceError maps service errors onto the public contract. Internal
// detail is logged and never returned.
func (h *EmailHandler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
		respond.WriteBadRequest(w, msg)
	case errors.Is(err, model.ErrNoReply):
		respond.WriteBadRequest(w, "no agent reply saved for this email")
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "email not found")
	case errors.Is(err, model.ErrOracle):
		h.log.Warn().Err(err).Str("op", op).Str("path", r.URL.Path).Msg("generation failed")
		respond.WriteNotFound(w, "email not found or generation failed")
	default:
		h.log.Error().Stack().Err(err).Str("op", op).Str("path", r.URL.Path).Msg("request failed")
		respond.WriteInternalError(w, "internal error")
	}
}

// IngestEmail POST /ingest-email
func (h *EmailHandler) IngestEmail(w http.ResponseWriter, r *http.Request) {
	var req model.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	e, err := h.svc.Ingest(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "ingest", err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":            e.ID,
		"intent":        e.Intent,
		"summary":       e.Summary,
		"assigned_team": e.AssignedTeam,
	})
}

// ListEmails GET /emails?limit=n
func (h *EmailHandler) ListEmails(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respond.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	emails, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, "list", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, emails)
}

// GetEmail GET /emails/{id}
func (h *EmailHandler) GetEmail(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, "get", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// RandomSample GET /random-sample-email
func (h *EmailHandler) RandomSample(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.RandomSample(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "no emails found")
			return
		}
		h.writeServiceError(w, r, "sample", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, e)
}

// ReassignEmail POST /reassign-email/{id}
func (h *EmailHandler) ReassignEmail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		NewTeam string `json:"new_team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	e, err := h.svc.Reassign(r.Context(), id, req.NewTeam)
	if err != nil {
		h.writeServiceError(w, r, "reassign", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Email reassigned successfully",
		"id":              e.ID,
		"assigned_team":   e.AssignedTeam,
		"manual_override": e.ManualOverride,
	})
}

// GenerateReply POST /generate-reply
func (h *EmailHandler) GenerateReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailID string `json:"email_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.EmailID) == "" {
		respond.WriteBadRequest(w, "email_id is required")
		return
	}
	draft, err := h.svc.GenerateReply(r.Context(), req.EmailID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "email not found or generation failed")
			return
		}
		h.writeServiceError(w, r, "generate_reply", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, draft)
}

// SaveReply POST /save-reply/{id}
func (h *EmailHandler) SaveReply(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.svc.SaveReply(r.Context(), id, req.Reply); err != nil {
		h.writeServiceError(w, r, "save_reply", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Reply saved successfully"})
}

// GenerateFeedback POST /generate-feedback/{id}
func (h *EmailHandler) GenerateFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := h.svc.GenerateFeedback(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, "generate_feedback", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, fb)
}
