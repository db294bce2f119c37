package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/vietanh2810/registration-api/internal/domain"
)

var (
	ErrBodyTooLarge = errors.New("request body too large")
	errNotScalar    = errors.New("expected a string, number or boolean")
)

// FlexString accepts a JSON string, number or boolean and keeps its text.
// Forms built by hand often send the semester or mobile number as numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	if data[0] == '{' || data[0] == '[' {
		return errNotScalar
	}

	*s = FlexString(data)
	return nil
}

func (s FlexString) String() string {
	return strings.TrimSpace(string(s))
}

// RegistrationRequest is the JSON body of POST /submit. eventType and
// teamMembers keep their raw form since clients send them in several shapes.
type RegistrationRequest struct {
	Name          FlexString      `json:"name"`
	RollNumber    FlexString      `json:"rollNumber"`
	Program       FlexString      `json:"program"`
	Semester      FlexString      `json:"semester"`
	MobileNumber  FlexString      `json:"mobileNumber"`
	College       FlexString      `json:"college"`
	Email         FlexString      `json:"email"`
	EventType     json.RawMessage `json:"eventType" swaggertype:"array,string"`
	TeamType      FlexString      `json:"teamType"`
	TeamName      FlexString      `json:"teamName"`
	TeamMembers   json.RawMessage `json:"teamMembers" swaggertype:"string"`
	UpiID         FlexString      `json:"upiId"`
	TransactionID FlexString      `json:"transactionId"`
	WhatsappLink  FlexString      `json:"whatsappLink"`
}

func (req *RegistrationRequest) ToSubmission() (domain.Submission, error) {
	events, err := decodeEvents(req.EventType)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("eventType: %w", err)
	}

	members, err := decodeTeamMembers(req.TeamMembers)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("teamMembers: %w", err)
	}

	return domain.Submission{
		Name:          req.Name.String(),
		RollNumber:    req.RollNumber.String(),
		Program:       req.Program.String(),
		Semester:      req.Semester.String(),
		MobileNumber:  req.MobileNumber.String(),
		College:       req.College.String(),
		Email:         req.Email.String(),
		Events:        events,
		TeamType:      req.TeamType.String(),
		TeamName:      req.TeamName.String(),
		TeamMembers:   members,
		UpiID:         req.UpiID.String(),
		TransactionID: req.TransactionID.String(),
		WhatsappLink:  req.WhatsappLink.String(),
	}, nil
}

func decodeEvents(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var items []FlexString
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}

		events := make([]string, 0, len(items))
		for _, item := range items {
			events = appendNonBlank(events, item.String())
		}
		return events, nil
	}

	var single FlexString
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}

	return appendNonBlank(nil, single.String()), nil
}

func decodeTeamMembers(raw json.RawMessage) (domain.TeamMembersInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return domain.TeamMembersInput{}, nil
	}

	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return domain.TeamMembersInput{}, err
		}
		if strings.TrimSpace(text) == "" {
			return domain.TeamMembersInput{}, nil
		}
		return domain.TeamMembersFromText(text), nil
	case '[', '{':
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var v any
		if err := dec.Decode(&v); err != nil {
			return domain.TeamMembersInput{}, err
		}
		if items, ok := v.([]any); ok {
			return domain.TeamMembersFromList(items), nil
		}
		return domain.TeamMembersFromList([]any{v}), nil
	default:
		return domain.TeamMembersFromText(string(raw)), nil
	}
}

// DecodeJSON reads a RegistrationRequest from body.
func DecodeJSON(r *http.Request) (domain.Submission, error) {
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			return domain.Submission{}, ErrBodyTooLarge
		}
		return domain.Submission{}, fmt.Errorf("json.Decode -> %w", err)
	}

	return req.ToSubmission()
}

// DecodeForm reads a submission from a multipart or urlencoded form. The
// receipt is returned separately and is nil when the field carries no file.
func DecodeForm(r *http.Request, maxMemory int64, receiptField string) (domain.Submission, *multipart.FileHeader, error) {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		if isTooLarge(err) {
			return domain.Submission{}, nil, ErrBodyTooLarge
		}
		return domain.Submission{}, nil, fmt.Errorf("r.ParseMultipartForm -> %w", err)
	}

	form := r.PostForm
	value := func(key string) string {
		return strings.TrimSpace(form.Get(key))
	}

	var events []string
	for _, key := range []string{"eventType", "eventType[]"} {
		for _, v := range form[key] {
			events = appendNonBlank(events, strings.TrimSpace(v))
		}
	}

	sub := domain.Submission{
		Name:          value("name"),
		RollNumber:    value("rollNumber"),
		Program:       value("program"),
		Semester:      value("semester"),
		MobileNumber:  value("mobileNumber"),
		College:       value("college"),
		Email:         value("email"),
		Events:        events,
		TeamType:      value("teamType"),
		TeamName:      value("teamName"),
		TeamMembers:   formTeamMembers(slices.Concat(form["teamMembers"], form["teamMembers[]"])),
		UpiID:         value("upiId"),
		TransactionID: value("transactionId"),
		WhatsappLink:  value("whatsappLink"),
	}

	var receipt *multipart.FileHeader
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File[receiptField]; len(files) > 0 {
			receipt = files[0]
		}
	}

	return sub, receipt, nil
}

// formTeamMembers keeps a single value as text for the normalizer to parse
// and turns a repeated field into a list of names or JSON objects.
func formTeamMembers(values []string) domain.TeamMembersInput {
	switch len(values) {
	case 0:
		return domain.TeamMembersInput{}
	case 1:
		if strings.TrimSpace(values[0]) == "" {
			return domain.TeamMembersInput{}
		}
		return domain.TeamMembersFromText(values[0])
	}

	items := make([]any, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		if strings.HasPrefix(v, "{") {
			var obj map[string]any
			dec := json.NewDecoder(strings.NewReader(v))
			dec.UseNumber()
			if err := dec.Decode(&obj); err == nil {
				items = append(items, obj)
				continue
			}
		}
		items = append(items, v)
	}

	return domain.TeamMembersFromList(items)
}

// IsJSON reports whether the request body is JSON.
func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func appendNonBlank(dst []string, v string) []string {
	if v == "" {
		return dst
	}

	return append(dst, v)
}
