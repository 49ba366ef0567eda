package model

// Intent categories recognised by the classifier.
const (
	IntentRefund       = "Refund"
	IntentComplaint    = "Complaint"
	IntentOrderStatus  = "Order Status"
	IntentProductQuery = "Product Query"
	IntentPartnership  = "Partnership"
	IntentOther        = "Other"
)

// DefaultTeam receives every email whose intent has no dedicated team.
const DefaultTeam = "general_queue"

// Intents lists the categories offered to the classifier, in prompt order.
var Intents = []string{
	IntentRefund,
	IntentComplaint,
	IntentOrderStatus,
	IntentProductQuery,
	IntentPartnership,
	IntentOther,
}

var intentTeams = map[string]string{
	IntentRefund:       "refunds_team",
	IntentComplaint:    "support_team",
	IntentOrderStatus:  "ops_team",
	IntentProductQuery: "product_team",
	IntentPartnership:  "bizdev_team",
	IntentOther:        DefaultTeam,
}

// TeamForIntent maps an intent to its team. Unknown or empty intents route to
// DefaultTeam.
func TeamForIntent(intent string) string {
	if team, ok := intentTeams[intent]; ok {
		return team
	}
	return DefaultTeam
}

// Teams returns the distinct known team names.
func Teams() []string {
	out := make([]string, 0, len(Intents))
	for _, intent := range Intents {
		out = append(out, intentTeams[intent])
	}
	return out
}
