// Package inbox pulls unseen messages from an IMAP mailbox and feeds them to
// the lifecycle service.
package inbox

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Mailbox is one logged-in session with a selected mailbox.
type Mailbox interface {
	ListUnseen() ([]uint32, error)
	// Fetch returns the raw RFC 5322 message and the server's internal date.
	Fetch(uid uint32) (io.Reader, time.Time, error)
	MarkSeen(uid uint32) error
	Close() error
}

// Dialer opens a new Mailbox session. The poller dials once per cycle.
type Dialer func() (Mailbox, error)

// IMAPMailbox is a Mailbox over go-imap v1. All operations use UIDs.
type IMAPMailbox struct {
	client  *client.Client
	timeout time.Duration
}

// DialIMAP connects over TLS, logs in and selects mailbox.
func DialIMAP(addr, user, password, mailbox string) (*IMAPMailbox, error) {
	cl, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("IMAP connection error: %w", err)
	}
	m := &IMAPMailbox{client: cl, timeout: 30 * time.Second}
	if err := cl.Login(user, password); err != nil {
		_ = cl.Logout()
		return nil, fmt.Errorf("IMAP login: %w", err)
	}
	if _, err := cl.Select(mailbox, false); err != nil {
		_ = cl.Logout()
		return nil, fmt.Errorf("IMAP select %s: %w", mailbox, err)
	}
	return m, nil
}

// IMAPDialer returns a Dialer bound to the given account.
func IMAPDialer(addr, user, password, mailbox string) Dialer {
	return func() (Mailbox, error) {
		return DialIMAP(addr, user, password, mailbox)
	}
}

func (m *IMAPMailbox) ListUnseen() ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := m.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("error searching for unseen emails: %w", err)
	}
	return uids, nil
}

func (m *IMAPMailbox) Fetch(uid uint32) (io.Reader, time.Time, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	// Peek so a failed ingest leaves the message unseen.
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchInternalDate, imap.FetchUid}

	prevTimeout := m.client.Timeout
	m.client.Timeout = m.timeout
	defer func() { m.client.Timeout = prevTimeout }()

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.client.UidFetch(seqSet, items, messages)
	}()

	var msg *imap.Message
	for mm := range messages {
		msg = mm
	}
	if err := <-done; err != nil {
		return nil, time.Time{}, fmt.Errorf("error fetching message UID %d: %w", uid, err)
	}
	if msg == nil {
		return nil, time.Time{}, fmt.Errorf("no message retrieved for UID %d", uid)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, time.Time{}, fmt.Errorf("empty body for UID %d", uid)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, time.Time{}, err
	}
	return bytes.NewReader(raw), msg.InternalDate, nil
}

func (m *IMAPMailbox) MarkSeen(uid uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	return m.client.UidStore(seqSet, item, flags, nil)
}

// Close logs out. A nil client is a no-op.
func (m *IMAPMailbox) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Logout()
}
