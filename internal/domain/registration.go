package domain

import (
	"io"
	"strings"
)

// Submission is one registration form as received from a client, decoded
// into its canonical shape.
type Submission struct {
	Name          string           `json:"name"`
	RollNumber    string           `json:"rollNumber"`
	Program       string           `json:"program"`
	Semester      string           `json:"semester"`
	MobileNumber  string           `json:"mobileNumber"`
	College       string           `json:"college"`
	Email         string           `json:"email"`
	Events        []string         `json:"eventType"`
	TeamType      string           `json:"teamType"`
	TeamName      string           `json:"teamName"`
	TeamMembers   TeamMembersInput `json:"-"`
	UpiID         string           `json:"upiId"`
	TransactionID string           `json:"transactionId"`
	WhatsappLink  string           `json:"whatsappLink"`
}

// EventLabel renders the selected events the way they are shown to humans.
func (s Submission) EventLabel() string {
	return strings.Join(s.Events, ", ")
}

type TeamMembersKind int

const (
	TeamMembersAbsent TeamMembersKind = iota
	TeamMembersText
	TeamMembersList
)

// TeamMembersInput keeps the team roster exactly as the client sent it:
// nothing, a single string (JSON or comma separated) or a list of items.
type TeamMembersInput struct {
	Kind  TeamMembersKind
	Text  string
	Items []any
}

func TeamMembersFromText(text string) TeamMembersInput {
	return TeamMembersInput{Kind: TeamMembersText, Text: text}
}

func TeamMembersFromList(items []any) TeamMembersInput {
	return TeamMembersInput{Kind: TeamMembersList, Items: items}
}

type TeamMember struct {
	Semester   string `json:"semester"`
	Program    string `json:"program"`
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	College    string `json:"college"`
}

// Upload is the payment receipt attached to a submission.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type StoredFile struct {
	OriginalName string
	Name         string
	Location     string
	URL          string
}

// LedgerRow is one row appended to the tabular store. Key identifies the
// registration for stores able to reject duplicates.
type LedgerRow struct {
	Key   string
	Cells []string
}

// Confirmation carries the values substituted into the confirmation email.
type Confirmation struct {
	ApplicantName string
	EventLabel    string
	TeamName      string
	TransactionID string
	CommunityLink string
}
