package services

import (
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// Conflict codes carried by ConflictError
const (
	CodeSlotUnavailable         = "SLOT_UNAVAILABLE"
	CodeDuplicateApplication    = "DUPLICATE_APPLICATION"
	CodeVerdictAlreadySubmitted = "VERDICT_ALREADY_SUBMITTED"
	CodeJuryChargeNotReleased   = "JURY_CHARGE_NOT_RELEASED"
	CodeMeetingExists           = "MEETING_EXISTS"
	CodeRescheduleNotPending    = "RESCHEDULE_NOT_PENDING"
	CodeRescheduleExists        = "RESCHEDULE_ALREADY_REQUESTED"
	CodeCaseFull                = "CASE_FULL"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeEmailTaken              = "EMAIL_TAKEN"
	CodeAlreadyRefunded         = "ALREADY_REFUNDED"
	CodePaymentExists           = "PAYMENT_EXISTS"
)

var (
	// ErrNotFound is wrapped by every lookup that finds nothing
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor may not touch the resource
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned for any failed login
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTooManyAttempts is returned while an account is locked out
	ErrTooManyAttempts = errors.New("too many failed login attempts, try again later")
)

// ValidationError carries every problem found with an input
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ConflictError is a business rule collision identified by Code
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func invalid(msgs ...string) error {
	return &ValidationError{Messages: msgs}
}

func conflict(code, msg string) error {
	return &ConflictError{Code: code, Message: msg}
}

func notFound(what string) error {
	return errors.Wrap(ErrNotFound, what)
}

func forbidden(why string) error {
	return errors.Wrap(ErrForbidden, why)
}

// IsConflict reports whether err is a ConflictError with the given code
func IsConflict(err error, code string) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Code == code
}

// lookup turns a missing document into ErrNotFound and wraps anything else
func lookup(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(what)
	}
	return errors.Wrapf(err, "failed to load %s", what)
}
