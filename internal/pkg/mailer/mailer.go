package mailer

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/vietanh2810/registration-api/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type SendError struct {
	Provider string
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%v: send failed -> %v", e.Provider, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// New builds the transport selected by conf.Driver.
func New(ctx context.Context, conf *config.MailConfig) (Sender, error) {
	switch conf.Driver {
	case config.MailDriverGmail:
		return NewGmailSender(ctx, conf)
	case config.MailDriverSMTP:
		return NewSMTPSender(conf), nil
	case config.MailDriverResend:
		return NewResendSender(conf), nil
	case config.MailDriverNone:
		return NopSender{}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", conf.Driver)
	}
}

// NopSender drops every message. Used when confirmations are disabled.
type NopSender struct{}

func (NopSender) Send(_ context.Context, msg Message) (string, error) {
	zap.L().Debug("mail disabled, dropping message", zap.String("to", msg.To))
	return "", nil
}

// compose builds a multipart/alternative message with a text and an HTML
// part.
func compose(from, fromName string, msg Message, headers map[string]string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	for k, v := range headers {
		m.SetHeader(k, v)
	}
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	return m
}

func render(m *gomail.Message) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("m.WriteTo -> %w", err)
	}

	return buf.Bytes(), nil
}
