package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	valid := []string{"a@b.co", "customer.name+tag@example.com"}
	for _, v := range valid {
		assert.NoError(t, Email(v), v)
	}
	invalid := []string{"", "plain", "missing-domain@", "@no-local.com", "two@@example.com"}
	for _, v := range invalid {
		assert.Error(t, Email(v), v)
	}
}

func TestNonEmpty(t *testing.T) {
	assert.NoError(t, NonEmpty("subject", "x"))
	assert.EqualError(t, NonEmpty("subject", ""), "subject is required")
	assert.EqualError(t, NonEmpty("body", " \n\t"), "body is required")
}

func TestIngestEmail(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, IngestEmail("Refund please", "I was charged twice", "a@b.co", ts))

	cases := map[string]struct {
		subject, body, from string
		ts                  time.Time
		want                string
	}{
		"missing subject": {"", "b", "a@b.co", ts, "subject is required"},
		"missing body":    {"s", "  ", "a@b.co", ts, "body is required"},
		"bad sender":      {"s", "b", "nope", ts, "invalid email"},
		"zero timestamp":  {"s", "b", "a@b.co", time.Time{}, "timestamp is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.EqualError(t, IngestEmail(tc.subject, tc.body, tc.from, tc.ts), tc.want)
		})
	}
}

func TestReassignAndReply(t *testing.T) {
	assert.Error(t, Reassign(""))
	assert.NoError(t, Reassign("vip_team"))
	assert.Error(t, Reply("   "))
	assert.NoError(t, Reply("Thanks for reaching out"))
}
