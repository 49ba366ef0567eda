package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("from is required")
	}
	if len(v) > 320 || !strfmt.IsEmail(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// NonEmpty rejects empty and whitespace-only values.
func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// -------- Request specific helpers ----------

// IngestEmail validates an inbound email before classification.
func IngestEmail(subject, body, from string, ts time.Time) error {
	if err := NonEmpty("subject", subject); err != nil {
		return err
	}
	if err := NonEmpty("body", body); err != nil {
		return err
	}
	if err := Email(from); err != nil {
		return err
	}
	if ts.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

func Reassign(newTeam string) error {
	return NonEmpty("new_team", newTeam)
}

func Reply(reply string) error {
	return NonEmpty("reply", reply)
}
