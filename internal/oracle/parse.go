package oracle

import (
	"encoding/json"
	"strings"

	"github.com/hiver-ai/email-triage/internal/model"
)

// Classification is the tagged result of parsing a classification reply.
// Fallback is true when the reply could not be used and the defaults apply.
type Classification struct {
	Intent   string
	Summary  string
	Fallback bool
	// Reason describes why the fallback was taken; empty when parsed.
	Reason string
}

// FallbackClassification is the degraded result used when the oracle is
// unavailable or its output is unusable.
func FallbackClassification(reason string) Classification {
	return Classification{Intent: model.IntentOther, Summary: "", Fallback: true, Reason: reason}
}

// ParseClassification extracts {"intent","summary"} from raw oracle text.
// It never fails: unusable text yields FallbackClassification. Fields are
// read independently, so a missing or non-string intent becomes
// model.IntentOther and a non-string summary becomes empty without
// discarding the other field. An object with neither field as a string is
// unusable.
func ParseClassification(raw string) Classification {
	var payload struct {
		Intent  json.RawMessage `json:"intent"`
		Summary json.RawMessage `json:"summary"`
	}
	body, ok := extractJSONObject(raw)
	if !ok {
		return FallbackClassification("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return FallbackClassification("malformed JSON: " + err.Error())
	}
	intent, okIntent := rawString(payload.Intent)
	summary, okSummary := rawString(payload.Summary)
	if !okIntent && !okSummary {
		return FallbackClassification("no intent or summary string in reply")
	}
	out := Classification{Intent: model.IntentOther, Summary: summary}
	if intent != "" {
		out.Intent = intent
	}
	return out
}

// rawString decodes a JSON string and trims it. ok is false for an absent
// field or any other JSON type.
func rawString(m json.RawMessage) (string, bool) {
	var s string
	if len(m) == 0 || json.Unmarshal(m, &s) != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// ParseFeedback extracts {"tone","clarity","helpfulness"} from raw oracle
// text. ok is false when the text is not a JSON object or carries none of
// the three ratings.
func ParseFeedback(raw string) (fb model.Feedback, ok bool) {
	body, found := extractJSONObject(raw)
	if !found {
		return model.Feedback{}, false
	}
	if err := json.Unmarshal([]byte(body), &fb); err != nil {
		return model.Feedback{}, false
	}
	if fb.Tone == "" && fb.Clarity == "" && fb.Helpfulness == "" {
		return model.Feedback{}, false
	}
	return fb, true
}

// extractJSONObject trims markdown code fences and surrounding prose and
// returns the outermost {...} span.
func extractJSONObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
