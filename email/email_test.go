package email

import (
	"errors"
	"testing"

	"portfolio-server/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sent []Message
	err  error
}

func (r *recorder) Send(msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestSendContactNotification(t *testing.T) {
	rec := &recorder{}
	m := NewWithTransport(rec, "owner@example.com", "ada.dev")

	err := m.SendContactNotification(&db.ContactSubmission{
		Id:      "sub-1",
		Name:    "Eve <script>",
		Email:   "eve@example.com",
		Message: "line one\nline two",
	})
	require.NoError(t, err)
	require.Len(t, rec.sent, 1)

	msg := rec.sent[0]
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "eve@example.com", msg.ReplyTo)
	assert.Equal(t, "New message on ada.dev: (no subject)", msg.Subject)
	assert.Contains(t, msg.Html, "Eve &lt;script&gt;")
	assert.Contains(t, msg.Html, "line one<br>line two")
	assert.Contains(t, msg.Text, "Submission id: sub-1")
}

func TestSendContactNotificationWithoutRecipient(t *testing.T) {
	rec := &recorder{}
	m := NewWithTransport(rec, "", "")

	require.NoError(t, m.SendContactNotification(&db.ContactSubmission{Id: "x"}))
	assert.Empty(t, rec.sent)
}

func TestSendCommentNotification(t *testing.T) {
	rec := &recorder{}
	m := NewWithTransport(rec, "owner@example.com", "ada.dev")

	// bodies are stored already escaped
	err := m.SendCommentNotification(&db.Comment{Id: "c-1", PostSlug: "engine", AuthorName: "Grace", Body: "a &amp; b"})
	require.NoError(t, err)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "New comment on ada.dev/engine awaiting moderation", rec.sent[0].Subject)
	assert.Contains(t, rec.sent[0].Html, "a &amp; b")
	assert.Contains(t, rec.sent[0].Text, "a & b")
}

func TestSendNewsletterConfirmation(t *testing.T) {
	rec := &recorder{}
	m := NewWithTransport(rec, "", "ada.dev")

	link := "https://ada.dev/api/newsletter/confirm?token=abc"
	require.NoError(t, m.SendNewsletterConfirmation("reader@example.com", link))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "reader@example.com", rec.sent[0].To)
	assert.Contains(t, rec.sent[0].Text, link)

	rec.err = errors.New("throttled")
	assert.ErrorContains(t, m.SendNewsletterConfirmation("reader@example.com", link), "throttled")
}

func TestNewPicksTransportByEnv(t *testing.T) {
	assert.IsType(t, &sesTransport{}, New(Options{Env: "production", From: "a@b.c"}).transport)
	assert.IsType(t, devTransport{}, New(Options{Env: "development"}).transport)
	assert.IsType(t, noopTransport{}, New(Options{Env: "test"}).transport)
}

func TestSesInput(t *testing.T) {
	input := sesInput("site@ada.dev", Message{To: "owner@ada.dev", ReplyTo: "eve@example.com", Subject: "hi", Text: "plain"})

	assert.Equal(t, "site@ada.dev", *input.Source)
	assert.Equal(t, "owner@ada.dev", *input.Destination.ToAddresses[0])
	assert.Equal(t, "eve@example.com", *input.ReplyToAddresses[0])
	assert.Equal(t, "plain", *input.Message.Body.Text.Data)
	assert.Nil(t, input.Message.Body.Html)

	input = sesInput("site@ada.dev", Message{To: "reader@example.com", Html: "<p>x</p>"})
	assert.Empty(t, input.ReplyToAddresses)
	assert.Equal(t, "<p>x</p>", *input.Message.Body.Html.Data)
}

func TestSendErrorAlert(t *testing.T) {
	rec := &recorder{}
	m := NewWithTransport(rec, "owner@example.com", "ada.dev")

	require.NoError(t, m.SendErrorAlert("panic in GET /api: <boom>"))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "[ada.dev] server error", rec.sent[0].Subject)
	assert.Contains(t, rec.sent[0].Html, "&lt;boom&gt;")

	require.NoError(t, NewWithTransport(rec, "", "").SendErrorAlert("x"))
	assert.Len(t, rec.sent, 1)
}
