package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vietanh2810/registration-api/internal/config"
)

const providerGmail = "gmail"

// GmailSender sends through the Gmail API as the account owning the
// refresh token.
type GmailSender struct {
	users    *gmail.UsersMessagesService
	from     string
	fromName string
}

func NewGmailSender(ctx context.Context, conf *config.MailConfig) (*GmailSender, error) {
	oauthConf := &oauth2.Config{
		ClientID:     conf.Gmail.ClientID,
		ClientSecret: conf.Gmail.ClientSecret,
		RedirectURL:  conf.Gmail.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := oauthConf.TokenSource(ctx, &oauth2.Token{RefreshToken: conf.Gmail.RefreshToken})

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService -> %w", err)
	}

	return NewGmailSenderWithService(svc, conf.From, conf.FromName), nil
}

func NewGmailSenderWithService(svc *gmail.Service, from, fromName string) *GmailSender {
	return &GmailSender{
		users:    svc.Users.Messages,
		from:     from,
		fromName: fromName,
	}
}

func (s *GmailSender) Send(ctx context.Context, msg Message) (string, error) {
	raw, err := s.Raw(msg)
	if err != nil {
		return "", &SendError{Provider: providerGmail, Err: err}
	}

	sent, err := s.users.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", &SendError{Provider: providerGmail, Err: err}
	}

	return sent.Id, nil
}

// Raw renders msg as the base64url RFC 2822 payload the API expects.
func (s *GmailSender) Raw(msg Message) (string, error) {
	b, err := render(compose(s.from, s.fromName, msg, nil))
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
