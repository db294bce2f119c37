package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrMissingReceipt = errors.New("missing payment receipt file")
)

// ValidationError is returned by intake when the submission cannot be
// accepted as sent. Handlers map it to 400.
type ValidationError struct {
	Reason error
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason.Error()
	}

	return fmt.Sprintf("%v: %v", e.Reason, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// IntakeError is a storage failure while accepting a submission.
type IntakeError struct {
	Op  string
	Err error
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("intake: %v -> %v", e.Op, e.Err)
}

func (e *IntakeError) Unwrap() error {
	return e.Err
}

// PersistenceError is a failed ledger append. It only ever reaches logs.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger append %q -> %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotificationError is a failed confirmation email. It only ever reaches logs.
type NotificationError struct {
	To  string
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %q -> %v", e.To, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
