package request

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/registration-api/internal/domain"
)

func TestRegistrationRequest_ToSubmission(t *testing.T) {
	body := `{
		"name": " Asha ",
		"rollNumber": 2101,
		"semester": "5",
		"mobileNumber": 9000000001,
		"eventType": ["Hack", " ", "Quiz"],
		"teamMembers": "[{\"name\":\"Bob\"}]",
		"transactionId": "TX-1",
		"email": null
	}`

	var req RegistrationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	sub, err := req.ToSubmission()
	require.NoError(t, err)

	assert.Equal(t, "Asha", sub.Name)
	assert.Equal(t, "2101", sub.RollNumber)
	assert.Equal(t, "9000000001", sub.MobileNumber)
	assert.Equal(t, []string{"Hack", "Quiz"}, sub.Events)
	assert.Equal(t, domain.TeamMembersFromText(`[{"name":"Bob"}]`), sub.TeamMembers)
	assert.Empty(t, sub.Email)
}

func TestDecodeTeamMembers(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.TeamMembersInput
	}{
		{raw: ``, want: domain.TeamMembersInput{}},
		{raw: `null`, want: domain.TeamMembersInput{}},
		{raw: `"  "`, want: domain.TeamMembersInput{}},
		{raw: `"Bob, Ann"`, want: domain.TeamMembersFromText("Bob, Ann")},
		{raw: `["Bob"]`, want: domain.TeamMembersFromList([]any{"Bob"})},
		{raw: `{"name":"Bob"}`, want: domain.TeamMembersFromList([]any{map[string]any{"name": "Bob"}})},
		{raw: `7`, want: domain.TeamMembersFromText("7")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := decodeTeamMembers(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexString_RejectsObjects(t *testing.T) {
	var req RegistrationRequest
	err := json.Unmarshal([]byte(`{"name":{"first":"A"}}`), &req)
	assert.Error(t, err)
}

func TestDecodeForm_URLEncoded(t *testing.T) {
	form := url.Values{}
	form.Set("name", "Asha")
	form.Add("eventType", "Hack")
	form.Add("eventType", "Quiz")
	form.Add("teamMembers", "Bob")
	form.Add("teamMembers", `{"name":"Ann","semester":4}`)
	form.Add("teamMembers", " ")

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sub, receipt, err := DecodeForm(req, 1<<20, "paymentReceipt")
	require.NoError(t, err)

	assert.Nil(t, receipt)
	assert.Equal(t, "Asha", sub.Name)
	assert.Equal(t, []string{"Hack", "Quiz"}, sub.Events)
	assert.Equal(t, domain.TeamMembersFromList([]any{
		"Bob",
		map[string]any{"name": "Ann", "semester": json.Number("4")},
	}), sub.TeamMembers)
}

func TestDecodeForm_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)

	sub, receipt, err := DecodeForm(req, 1<<20, "paymentReceipt")
	require.NoError(t, err)

	assert.Nil(t, receipt)
	assert.Equal(t, domain.Submission{}, sub)
}

func TestIsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	assert.False(t, IsJSON(req))

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, IsJSON(req))

	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	assert.False(t, IsJSON(req))
}
