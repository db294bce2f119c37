package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/domain"
	"github.com/vietanh2810/registration-api/internal/pkg/mailer"
)

type fakeSender struct {
	msgs []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.msgs = append(f.msgs, msg)

	return "msg-1", nil
}

func testFest() *config.EventConfig {
	return &config.EventConfig{
		Name:          "YUGANTRAN 2025",
		Title:         "YUGANTRAN 2025",
		Host:          "Example Institute",
		Date:          "28 November 2025",
		Venue:         "Main Auditorium",
		ContactEmail:  "fest@example.com",
		ContactPhones: []string{"+91 90000 00001", "+91 90000 00002"},
	}
}

func testConfirmation(link string) domain.Confirmation {
	return domain.Confirmation{
		ApplicantName: "Asha",
		EventLabel:    "Hack, Quiz",
		TeamName:      "Rockets",
		TransactionID: "TX-1",
		CommunityLink: link,
	}
}

func TestRender_WithoutCommunityLink(t *testing.T) {
	svc := NewNotificationService(&fakeSender{}, testFest())

	msg, err := svc.Render(testConfirmation(""))
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<a ")
	assert.NotContains(t, msg.HTML, "WhatsApp")
	assert.NotContains(t, msg.Text, "WhatsApp")
	assert.Contains(t, msg.HTML, "Asha")
	assert.Contains(t, msg.HTML, "TX-1")
}

func TestRender_WithCommunityLink(t *testing.T) {
	svc := NewNotificationService(&fakeSender{}, testFest())
	link := "https://chat.whatsapp.com/AbCdEf123"

	msg, err := svc.Render(testConfirmation(link))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(msg.HTML, "<a "))
	assert.Equal(t, 1, strings.Count(msg.HTML, `href="`+link+`"`))
	assert.Contains(t, msg.Text, link)
	assert.Equal(t, "Registration Confirmed: Hack, Quiz - YUGANTRAN 2025", msg.Subject)
}

func TestRender_EscapesApplicantInput(t *testing.T) {
	svc := NewNotificationService(&fakeSender{}, testFest())
	c := testConfirmation("")
	c.ApplicantName = `<script>alert(1)</script>`

	msg, err := svc.Render(c)
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
}

func TestNotify(t *testing.T) {
	sender := &fakeSender{}
	svc := NewNotificationService(sender, testFest())

	require.NoError(t, svc.Notify(context.Background(), "asha@example.com", testConfirmation("")))

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, "asha@example.com", sender.msgs[0].To)
}

func TestNotify_TransportFailure(t *testing.T) {
	cause := &mailer.SendError{Provider: "smtp", Err: errors.New("connection refused")}
	svc := NewNotificationService(&fakeSender{err: cause}, testFest())

	err := svc.Notify(context.Background(), "asha@example.com", testConfirmation(""))

	var notifyErr *NotificationError
	require.ErrorAs(t, err, &notifyErr)
	assert.Equal(t, "asha@example.com", notifyErr.To)

	var sendErr *mailer.SendError
	assert.ErrorAs(t, err, &sendErr)
}
