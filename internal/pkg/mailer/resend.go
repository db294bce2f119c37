package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/vietanh2810/registration-api/internal/config"
)

const providerResend = "resend"

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(conf *config.MailConfig) *ResendSender {
	from := conf.From
	if conf.FromName != "" {
		from = fmt.Sprintf("%v <%v>", conf.FromName, conf.From)
	}

	return &ResendSender{
		client: resend.NewClient(conf.Resend.APIKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", &SendError{Provider: providerResend, Err: err}
	}

	return sent.Id, nil
}
