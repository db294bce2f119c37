package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/domain"
	"github.com/vietanh2810/registration-api/internal/pkg/filestore"
)

// DefaultRequiredFields is the field set every form revision has required.
var DefaultRequiredFields = []string{
	"name", "rollNumber", "program", "semester", "mobileNumber", "college", "eventType", "upiId", "transactionId",
}

type LedgerRepository interface {
	Append(ctx context.Context, row domain.LedgerRow) error
}

type ReceiptStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	URL(baseURL, name string) string
}

type Notifier interface {
	Notify(ctx context.Context, to string, c domain.Confirmation) error
}

type RegistrationService struct {
	conf       *config.IntakeConfig
	fest       *config.EventConfig
	required   []string
	files      ReceiptStore
	ledger     LedgerRepository
	formatter  *RowFormatter
	notifier   Notifier
	dispatcher Dispatcher
}

func NewRegistrationService(
	conf *config.IntakeConfig,
	fest *config.EventConfig,
	files ReceiptStore,
	ledger LedgerRepository,
	formatter *RowFormatter,
	notifier Notifier,
	dispatcher Dispatcher,
) *RegistrationService {
	required := conf.RequiredFields
	if len(required) == 0 {
		required = DefaultRequiredFields
	}

	return &RegistrationService{
		conf:       conf,
		fest:       fest,
		required:   required,
		files:      files,
		ledger:     ledger,
		formatter:  formatter,
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

// submissionField returns a pointer to the field a form key maps to, or nil
// for keys that cannot be required.
func submissionField(sub *domain.Submission, key string) interface{} {
	switch key {
	case "name":
		return &sub.Name
	case "rollNumber":
		return &sub.RollNumber
	case "program":
		return &sub.Program
	case "semester":
		return &sub.Semester
	case "mobileNumber":
		return &sub.MobileNumber
	case "college":
		return &sub.College
	case "email":
		return &sub.Email
	case "eventType":
		return &sub.Events
	case "teamType":
		return &sub.TeamType
	case "teamName":
		return &sub.TeamName
	case "upiId":
		return &sub.UpiID
	case "transactionId":
		return &sub.TransactionID
	case "whatsappLink":
		return &sub.WhatsappLink
	default:
		return nil
	}
}

// CheckRequiredFields rejects field keys intake does not know about.
func CheckRequiredFields(keys []string) error {
	var probe domain.Submission
	for _, key := range keys {
		if submissionField(&probe, key) == nil {
			return fmt.Errorf("field %q cannot be required", key)
		}
	}

	return nil
}

func (s *RegistrationService) validate(sub domain.Submission) error {
	rules := make([]*validation.FieldRules, 0, len(s.required))
	for _, key := range s.required {
		if field := submissionField(&sub, key); field != nil {
			rules = append(rules, validation.Field(field, validation.Required))
		}
	}

	err := validation.ValidateStruct(&sub, rules...)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation.ValidateStruct -> %w", err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return &ValidationError{Reason: ErrMissingFields, Fields: fields}
}

// Submit accepts a registration: it validates the required fields, stores
// the receipt and hands the rest of the work to the dispatcher. A nil error
// only means the submission was accepted; the ledger append and the email
// happen afterwards and their failures are logged, never returned.
func (s *RegistrationService) Submit(ctx context.Context, sub domain.Submission, upload *domain.Upload, baseURL string) (domain.StoredFile, error) {
	if err := s.validate(sub); err != nil {
		return domain.StoredFile{}, err
	}

	if upload == nil && s.conf.ReceiptRequired {
		return domain.StoredFile{}, &ValidationError{Reason: ErrMissingReceipt}
	}

	stored := domain.StoredFile{URL: Placeholder}
	if upload != nil {
		var err error
		stored, err = s.storeReceipt(ctx, upload, baseURL)
		if err != nil {
			return domain.StoredFile{}, err
		}
	}

	s.dispatcher.Dispatch(ctx, "registration", func(ctx context.Context) error {
		return s.Process(ctx, sub, stored.URL)
	})

	return stored, nil
}

func (s *RegistrationService) storeReceipt(ctx context.Context, upload *domain.Upload, baseURL string) (domain.StoredFile, error) {
	name, err := filestore.UniqueName(upload.Filename)
	if err != nil {
		return domain.StoredFile{}, &IntakeError{Op: "name receipt", Err: err}
	}

	location, err := s.files.Save(ctx, name, upload.Reader, upload.ContentType)
	if err != nil {
		return domain.StoredFile{}, &IntakeError{Op: "store receipt", Err: fmt.Errorf("s.files.Save -> %w", err)}
	}

	return domain.StoredFile{
		OriginalName: upload.Filename,
		Name:         name,
		Location:     location,
		URL:          s.files.URL(baseURL, name),
	}, nil
}

// Process is the background half of a registration: normalize the roster,
// append the ledger row and, when the applicant left an address, send the
// confirmation. A failed append ends the job without emailing.
func (s *RegistrationService) Process(ctx context.Context, sub domain.Submission, receiptURL string) error {
	members := NormalizeTeamMembers(sub.TeamMembers, sub.College)
	row := s.formatter.Format(sub, members, receiptURL)

	if err := s.ledger.Append(ctx, row); err != nil {
		return &PersistenceError{Key: row.Key, Err: fmt.Errorf("s.ledger.Append -> %w", err)}
	}

	zap.L().Info("registration saved",
		zap.String("name", sub.Name),
		zap.String("roll_number", sub.RollNumber),
		zap.String("event", sub.EventLabel()),
		zap.Int("team_members", len(members)),
	)

	to := strings.TrimSpace(sub.Email)
	if to == "" {
		return nil
	}

	link := sub.WhatsappLink
	if link == "" && s.fest != nil {
		link = s.fest.CommunityLink
	}

	return s.notifier.Notify(ctx, to, domain.Confirmation{
		ApplicantName: sub.Name,
		EventLabel:    sub.EventLabel(),
		TeamName:      sub.TeamName,
		TransactionID: sub.TransactionID,
		CommunityLink: link,
	})
}
