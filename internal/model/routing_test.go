package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamForIntent_KnownIntents(t *testing.T) {
	cases := map[string]string{
		"Refund":        "refunds_team",
		"Complaint":     "support_team",
		"Order Status":  "ops_team",
		"Product Query": "product_team",
		"Partnership":   "bizdev_team",
		"Other":         "general_queue",
	}
	for intent, want := range cases {
		assert.Equal(t, want, TeamForIntent(intent), intent)
	}
}

func TestTeamForIntent_UnknownFallsBackToGeneralQueue(t *testing.T) {
	for _, intent := range []string{"", "refund", "Billing", "ORDER STATUS", " Refund"} {
		assert.Equal(t, DefaultTeam, TeamForIntent(intent), "intent %q", intent)
	}
}

func TestTeams_CoversEveryIntent(t *testing.T) {
	teams := Teams()
	assert.Len(t, teams, len(Intents))
	assert.Contains(t, teams, "general_queue")
	assert.Contains(t, teams, "refunds_team")
}

func TestEmail_HasReply(t *testing.T) {
	e := &Email{}
	assert.False(t, e.HasReply())
	empty := ""
	e.AgentReply = &empty
	assert.False(t, e.HasReply())
	r := "Thanks, refund issued."
	e.AgentReply = &r
	assert.True(t, e.HasReply())
}
