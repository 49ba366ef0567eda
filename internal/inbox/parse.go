package inbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/hiver-ai/email-triage/internal/model"
)

// Parse turns a raw message into an ingest request. The sender is the first
// From address; the body is the first text/plain part. When the Date header
// is missing or unparseable, received is used.
func Parse(raw io.Reader, received time.Time) (model.IngestRequest, error) {
	mr, err := mail.CreateReader(raw)
	if err != nil {
		return model.IngestRequest{}, fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	var req model.IngestRequest
	h := mr.Header

	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		req.From = from[0].Address
	}

	subject, err := h.Subject()
	if err != nil {
		subject = h.Get("Subject")
	}
	req.Subject = strings.TrimSpace(subject)

	if date, err := h.Date(); err == nil && !date.IsZero() {
		req.Timestamp = date.UTC()
	} else {
		req.Timestamp = received.UTC()
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return model.IngestRequest{}, fmt.Errorf("read part: %w", err)
		}

		ih, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := ih.ContentType()
		if err != nil || contentType != "text/plain" {
			continue
		}
		body, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		if req.Body == "" {
			req.Body = strings.TrimSpace(string(body))
		}
	}
	return req, nil
}
