package model

import "time"

// Email is the stored state of one inbound support email.
type Email struct {
	ID             string    `json:"_id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	From           string    `json:"from"`
	Timestamp      time.Time `json:"timestamp"`
	Intent         string    `json:"intent"`
	Summary        string    `json:"summary"`
	AssignedTeam   string    `json:"assigned_team"`
	ManualOverride bool      `json:"manual_override"`
	AgentReply     *string   `json:"agent_reply,omitempty"`
}

// HasReply reports whether a non-empty agent reply is stored.
func (e *Email) HasReply() bool {
	return e.AgentReply != nil && *e.AgentReply != ""
}

// IngestRequest is the raw inbound email before classification.
type IngestRequest struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	From      string    `json:"from"`
	Timestamp time.Time `json:"timestamp"`
}

// ReplyDraft is a generated reply returned for display; it is never persisted.
type ReplyDraft struct {
	EmailID         string `json:"email_id"`
	OriginalSubject string `json:"original_subject"`
	OriginalBody    string `json:"original_body"`
	GeneratedReply  string `json:"generated_reply"`
}

// Feedback is the oracle's assessment of a saved agent reply.
type Feedback struct {
	Tone        string `json:"tone"`
	Clarity     string `json:"clarity"`
	Helpfulness string `json:"helpfulness"`
}
