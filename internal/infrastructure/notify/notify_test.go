package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/ports"
)

func sampleItems() []ports.NotificationItem {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return []ports.NotificationItem{
		{
			BusinessNumber: "24.3927",
			BusinessTitle:  "Motion <Test>",
			AlertType:      parliament.AlertStatusChange,
			Message:        "Geschaeft 24.3927: Status geaendert von 'Eingereicht' zu 'Erledigt'",
		},
		{
			BusinessNumber: "24.3927",
			AlertType:      parliament.AlertDebateScheduled,
			Message:        "Geschaeft 24.3927: Traktandiert",
			EventDate:      &date,
		},
	}
}

func TestNewFallsBackToLogNotifier(t *testing.T) {
	_, ok := New(config.NotifyConfig{}).(LogNotifier)
	assert.True(t, ok)

	_, ok = New(config.NotifyConfig{SMTPHost: "mail.example.org", SMTPPort: 587}).(*SMTPNotifier)
	assert.True(t, ok)
}

func TestSMTPNotifierComposesDigest(t *testing.T) {
	n := NewSMTPNotifier(config.NotifyConfig{SMTPHost: "mail.example.org", SMTPPort: 587})

	var sent *mail.Msg
	n.send = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	err := n.Notify(context.Background(), ports.Recipient{Email: "anna@example.org", DisplayName: "Anna"}, sampleItems())
	require.NoError(t, err)
	require.NotNil(t, sent)

	from, err := sent.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "noreply@mail.example.org", from)
	rcpts, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"anna@example.org"}, rcpts)

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "- 24.3927: Geschaeft 24.3927: Status geaendert")
	assert.Contains(t, body, "Statusänderung")
	assert.Contains(t, body, "10.03.2025")
	assert.Contains(t, body, "Motion &lt;Test&gt;")
	assert.Contains(t, body, "Subject: Parlamentsmonitor: 2 neue Alert(s)")
	assert.Regexp(t, `To: "?Anna"? <anna@example.org>`, body)
}

func TestSMTPClientOptionsFollowConfig(t *testing.T) {
	plain := NewSMTPNotifier(config.NotifyConfig{SMTPHost: "mail.example.org"})
	assert.Len(t, plain.clientOptions(), 1)

	full := NewSMTPNotifier(config.NotifyConfig{
		SMTPHost:     "mail.example.org",
		SMTPPort:     2525,
		SMTPUser:     "monitor",
		SMTPPassword: "secret",
		UseTLS:       true,
	})
	assert.Len(t, full.clientOptions(), 5)

	client, err := mail.NewClient("mail.example.org", full.clientOptions()...)
	require.NoError(t, err)
	assert.Equal(t, "mail.example.org:2525", client.ServerAddr())
	assert.Equal(t, mail.TLSMandatory.String(), client.TLSPolicy())
}

func TestSMTPNotifierSkipsEmptyDigest(t *testing.T) {
	n := NewSMTPNotifier(config.NotifyConfig{SMTPHost: "mail.example.org"})
	n.send = func(context.Context, *mail.Msg) error {
		t.Fatalf("send must not be called")
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), ports.Recipient{Email: "anna@example.org"}, nil))
	require.NoError(t, n.Notify(context.Background(), ports.Recipient{}, sampleItems()))
}

func TestSMTPNotifierWrapsSendError(t *testing.T) {
	n := NewSMTPNotifier(config.NotifyConfig{SMTPHost: "mail.example.org", From: "monitor@example.org"})
	boom := errors.New("connection refused")
	n.send = func(context.Context, *mail.Msg) error { return boom }

	err := n.Notify(context.Background(), ports.Recipient{Email: "anna@example.org"}, sampleItems())
	assert.ErrorIs(t, err, boom)
}
