package email

import (
	"fmt"
	"html"
	"strings"

	"portfolio-server/db"

	"go.uber.org/zap"
)

// Transport delivers one message. Production uses SES; development copies to the
// clipboard and pops a desktop notification.
type Transport interface {
	Send(msg Message) error
}

// Message is a single outgoing email. ReplyTo is optional.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Html    string
	Text    string
}

type Mailer struct {
	transport Transport
	notifyTo  string
	siteName  string
}

type Options struct {
	Env      string
	From     string
	NotifyTo string
	SiteName string
}

func New(opts Options) *Mailer {
	var t Transport
	switch opts.Env {
	case "production":
		t = &sesTransport{from: opts.From}
	case "development":
		t = devTransport{}
	default:
		t = noopTransport{}
	}
	return NewWithTransport(t, opts.NotifyTo, opts.SiteName)
}

func NewWithTransport(t Transport, notifyTo, siteName string) *Mailer {
	if siteName == "" {
		siteName = "your portfolio"
	}
	return &Mailer{transport: t, notifyTo: notifyTo, siteName: siteName}
}

// SendContactNotification forwards a contact submission to the owner. Without a notify
// address it is a no-op.
func (m *Mailer) SendContactNotification(sub *db.ContactSubmission) error {
	if m.notifyTo == "" {
		zap.L().Debug("contact notification skipped, no notify address", zap.String("submissionId", sub.Id))
		return nil
	}

	subject := fmt.Sprintf("New message on %s: %s", m.siteName, firstNonEmpty(sub.Subject, "(no subject)"))

	htmlBody := fmt.Sprintf(
		"<p><strong>%s</strong> &lt;%s&gt; wrote:</p><blockquote>%s</blockquote><p>Submission id: %s</p>",
		html.EscapeString(sub.Name),
		html.EscapeString(sub.Email),
		strings.ReplaceAll(html.EscapeString(sub.Message), "\n", "<br>"),
		sub.Id,
	)
	textBody := fmt.Sprintf("%s <%s> wrote:\n\n%s\n\nSubmission id: %s", sub.Name, sub.Email, sub.Message, sub.Id)

	msg := Message{To: m.notifyTo, ReplyTo: sub.Email, Subject: subject, Html: htmlBody, Text: textBody}
	if err := m.transport.Send(msg); err != nil {
		return fmt.Errorf("error sending contact notification: %v", err)
	}
	return nil
}

// SendCommentNotification tells the owner a comment is waiting for moderation.
func (m *Mailer) SendCommentNotification(c *db.Comment) error {
	if m.notifyTo == "" {
		return nil
	}

	subject := fmt.Sprintf("New comment on %s/%s awaiting moderation", m.siteName, c.PostSlug)
	htmlBody := fmt.Sprintf("<p><strong>%s</strong> commented on <em>%s</em>:</p><blockquote>%s</blockquote><p>Comment id: %s</p>",
		html.EscapeString(c.AuthorName), html.EscapeString(c.PostSlug), c.Body, c.Id)
	textBody := fmt.Sprintf("%s commented on %s:\n\n%s\n\nComment id: %s", c.AuthorName, c.PostSlug, html.UnescapeString(c.Body), c.Id)

	msg := Message{To: m.notifyTo, ReplyTo: c.AuthorEmail, Subject: subject, Html: htmlBody, Text: textBody}
	if err := m.transport.Send(msg); err != nil {
		return fmt.Errorf("error sending comment notification: %v", err)
	}
	return nil
}

// SendErrorAlert reports a server failure to the owner. Without a notify address it is a
// no-op.
func (m *Mailer) SendErrorAlert(details string) error {
	if m.notifyTo == "" {
		return nil
	}

	subject := fmt.Sprintf("[%s] server error", m.siteName)
	text := "The server reported an error:\n\n" + details
	htmlBody := "<p>The server reported an error:</p><pre>" + html.EscapeString(details) + "</pre>"

	if err := m.transport.Send(Message{To: m.notifyTo, Subject: subject, Html: htmlBody, Text: text}); err != nil {
		return fmt.Errorf("error sending error alert: %v", err)
	}
	return nil
}

func (m *Mailer) SendNewsletterConfirmation(to, confirmUrl string) error {
	subject := fmt.Sprintf("Confirm your subscription to %s", m.siteName)
	htmlBody := fmt.Sprintf(
		"<p>Hi there,</p><p>Please confirm your subscription to %s by clicking the link below.</p><p><a href=\"%s\">Confirm subscription</a></p><p>If you didn't sign up, you can ignore this email.</p>",
		html.EscapeString(m.siteName), html.EscapeString(confirmUrl),
	)
	textBody := fmt.Sprintf(
		"Hi there,\n\nPlease confirm your subscription to %s by opening this link:\n%s\n\nIf you didn't sign up, you can ignore this email.",
		m.siteName, confirmUrl,
	)

	if err := m.transport.Send(Message{To: to, Subject: subject, Html: htmlBody, Text: textBody}); err != nil {
		return fmt.Errorf("error sending newsletter confirmation: %v", err)
	}
	return nil
}

type noopTransport struct{}

func (noopTransport) Send(msg Message) error {
	zap.L().Debug("email not sent outside production and development", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
