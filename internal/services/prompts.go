package services

import (
	"fmt"
	"strings"

	"github.com/hiver-ai/email-triage/internal/model"
)

func classificationPrompt(subject, from, body string) string {
	var b strings.Builder
	b.WriteString("You are an email assistant.\n")
	fmt.Fprintf(&b, "Classify the intent of the following email into one of these categories: %s.\n",
		strings.Join(model.Intents, ", "))
	b.WriteString("Then, generate a 1-line summary of the email.\n")
	b.WriteString("Email:\n")
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "From: %s\n", from)
	fmt.Fprintf(&b, "Body: %s\n", body)
	b.WriteString("Respond ONLY in valid JSON with keys 'intent' and 'summary'.")
	return b.String()
}

func replyPrompt(e *model.Email) string {
	return fmt.Sprintf(`You are a helpful support agent. Write a polite and helpful email reply to the following customer message.
Use the context provided to craft an appropriate response.

Original Email Subject: %s
Original Email: %s
Intent Classification: %s
Assigned Team: %s

Write a professional reply that addresses the customer's concerns. The reply should be:
1. Polite and empathetic
2. Direct and clear
3. Actionable with next steps if needed
4. In a professional tone

Reply:`, e.Subject, e.Body, e.Intent, e.AssignedTeam)
}

func feedbackPrompt(reply string) string {
	return fmt.Sprintf(`Analyze the following email reply and rate it on:
- Tone (e.g., Polite, Rude, Neutral)
- Clarity (Clear, Moderate, Confusing)
- Helpfulness (High, Medium, Low)

Reply:
%s

Return the response in JSON format with keys: tone, clarity, helpfulness.`, reply)
}
