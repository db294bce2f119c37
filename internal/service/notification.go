package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/domain"
	"github.com/vietanh2810/registration-api/internal/pkg/mailer"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = map[string]any{
	"join": strings.Join,
}

var (
	confirmationHTML = htmltemplate.Must(
		htmltemplate.New("confirmation.html.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/confirmation.html.tmpl"),
	)
	confirmationText = texttemplate.Must(
		texttemplate.New("confirmation.txt.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/confirmation.txt.tmpl"),
	)
)

type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

type NotificationService struct {
	sender MailSender
	fest   *config.EventConfig
}

func NewNotificationService(sender MailSender, fest *config.EventConfig) *NotificationService {
	return &NotificationService{
		sender: sender,
		fest:   fest,
	}
}

type confirmationData struct {
	Name          string
	Event         string
	TeamName      string
	TransactionID string
	CommunityLink string
	Year          int
	Fest          *config.EventConfig
}

// Render produces the subject and both bodies of the confirmation email.
// The community call to action is left out entirely without a link.
func (s *NotificationService) Render(c domain.Confirmation) (mailer.Message, error) {
	data := confirmationData{
		Name:          c.ApplicantName,
		Event:         c.EventLabel,
		TeamName:      c.TeamName,
		TransactionID: c.TransactionID,
		CommunityLink: strings.TrimSpace(c.CommunityLink),
		Year:          time.Now().Year(),
		Fest:          s.fest,
	}

	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("confirmationHTML.Execute -> %w", err)
	}
	if err := confirmationText.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("confirmationText.Execute -> %w", err)
	}

	return mailer.Message{
		Subject: fmt.Sprintf("Registration Confirmed: %v - %v", c.EventLabel, s.fest.Title),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func (s *NotificationService) Notify(ctx context.Context, to string, c domain.Confirmation) error {
	msg, err := s.Render(c)
	if err != nil {
		return &NotificationError{To: to, Err: err}
	}
	msg.To = to

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return &NotificationError{To: to, Err: fmt.Errorf("s.sender.Send -> %w", err)}
	}

	zap.L().Info("confirmation sent", zap.String("to", to), zap.String("message_id", id))

	return nil
}
