package email

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
)

const charset = "UTF-8"

// sesTransport lazily builds the SES client on first send so that a missing AWS
// configuration only surfaces when mail is actually needed.
type sesTransport struct {
	from string

	once sync.Once
	svc  *ses.SES
	err  error
}

func (t *sesTransport) client() (*ses.SES, error) {
	t.once.Do(func() {
		sess, err := session.NewSession()
		if err != nil {
			t.err = fmt.Errorf("error creating AWS session: %v", err)
			return
		}
		t.svc = ses.New(sess)
	})
	return t.svc, t.err
}

func (t *sesTransport) Send(msg Message) error {
	svc, err := t.client()
	if err != nil {
		return err
	}

	_, err = svc.SendEmail(sesInput(t.from, msg))
	return err
}

func sesInput(from string, msg Message) *ses.SendEmailInput {
	input := &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &ses.Destination{ToAddresses: aws.StringSlice([]string{msg.To})},
		Message: &ses.Message{
			Subject: utf8(msg.Subject),
			Body:    &ses.Body{Text: utf8(msg.Text)},
		},
	}
	if msg.Html != "" {
		input.Message.Body.Html = utf8(msg.Html)
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = aws.StringSlice([]string{msg.ReplyTo})
	}
	return input
}

func utf8(s string) *ses.Content {
	return &ses.Content{Charset: aws.String(charset), Data: aws.String(s)}
}
