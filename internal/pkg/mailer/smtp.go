package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/vietanh2810/registration-api/internal/config"
)

const providerSMTP = "smtp"

// SMTPSender authenticates with an app password and sends over STARTTLS
// (or implicit TLS on port 465).
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(conf *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(conf.SMTP.Host, conf.SMTP.Port, conf.SMTP.Username, conf.SMTP.Password),
		from:     conf.From,
		fromName: conf.FromName,
	}
}

// Send has no deadline of its own; ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &SendError{Provider: providerSMTP, Err: err}
	}

	id := messageID(s.from)
	m := compose(s.from, s.fromName, msg, map[string]string{"Message-ID": id})

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", &SendError{Provider: providerSMTP, Err: err}
	}

	return id, nil
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}

	return fmt.Sprintf("<%v@%v>", uuid.NewString(), domain)
}
