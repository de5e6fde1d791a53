// Package errors classifies sign-up failures.
//
// Validation failures are public: their messages are meant for the person filling
// in the form. Transport failures are private: they are logged and never shown.
//
//	var verr *errors.ValidationError
//	if stderrors.As(err, &verr) {
//		// render verr.Messages()
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"

	"signup-portal/pkg/core/signup/model"
)

var (
	ErrReferenceUnavailable = errors.New("reference data unavailable")
	ErrSubmissionRejected   = errors.New("submission rejected by remote endpoint")
	ErrSubmissionSkipped    = errors.New("submission skipped: form failed validation")
)

// ValidationError carries every violated rule of a single form submission.
type ValidationError struct {
	Violations []model.Violation
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), " ")
}

// Messages lists the user facing messages in rule order.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// TransportError describes a submission that did not end in 201 Created.
// StatusCode is zero when the request never got a response.
type TransportError struct {
	SubmissionID string
	StatusCode   int
	Err          error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submission %s: unexpected status %d: %v", e.SubmissionID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submission %s: %v", e.SubmissionID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewValidationFailure wraps violations as a public hertz error; nil when there are none.
func NewValidationFailure(violations []model.Violation) *hzte.Error {
	if len(violations) == 0 {
		return nil
	}
	return hzte.New(&ValidationError{Violations: violations}, hzte.ErrorTypePublic, violations)
}

// NewTransportFailure wraps a failed submission as a private hertz error.
func NewTransportFailure(submissionID string, status int, cause error) *hzte.Error {
	if cause == nil {
		cause = ErrSubmissionRejected
	}
	return hzte.New(&TransportError{
		SubmissionID: submissionID,
		StatusCode:   status,
		Err:          cause,
	}, hzte.ErrorTypePrivate, nil)
}

// NewReferenceFailure marks a reference data load failure.
func NewReferenceFailure(cause error) error {
	return fmt.Errorf("%w: %v", ErrReferenceUnavailable, cause)
}

// IsValidationFailure reports whether err carries a ValidationError.
func IsValidationFailure(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsTransportFailure reports whether err carries a TransportError.
func IsTransportFailure(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr)
}

// IsPublic reports whether err may be shown to the user.
func IsPublic(err error) bool {
	var herr *hzte.Error
	if errors.As(err, &herr) {
		return herr.IsType(hzte.ErrorTypePublic)
	}
	return false
}
