package generation

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors for the orchestration core.
var (
	// ErrMissingArtifact is returned when a provider reports success without
	// a retrievable artifact locator.
	ErrMissingArtifact = errors.New("generation: succeeded without artifact locator")
)

// Kind identifies where in the job lifecycle a failure originated.
type Kind string

// Failure kinds. Validation failures are caller defects and never retried;
// provider failures cover mid-job rejections and missing artifacts; timeout
// means the poll attempt ceiling was exhausted.
const (
	KindValidation Kind = "validation"
	KindSubmission Kind = "submission"
	KindProvider   Kind = "provider"
	KindTimeout    Kind = "timeout"
	KindDownload   Kind = "download"
)

// Error is the caller-facing failure for a generation job. Status carries an
// HTTP-equivalent code (400 for request defects, 500 for provider/internal
// failures, 504 for exhausted polling) so callers can decide whether a retry
// of the whole job is worthwhile.
type Error struct {
	Status  int
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a 400-class error for a request defect.
func NewValidationError(format string, args ...any) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewSubmissionError builds the error for a rejected job submission.
// A 4xx from the provider means the payload was defective (400-class);
// anything else is a provider-side failure (500-class).
func NewSubmissionError(err error) *Error {
	status := http.StatusInternalServerError
	var se httpStatusError
	if errors.As(err, &se) && se.HTTPStatus() >= 400 && se.HTTPStatus() < 500 {
		status = http.StatusBadRequest
	}
	return &Error{
		Status:  status,
		Kind:    KindSubmission,
		Message: "provider rejected the job",
		Err:     err,
	}
}

// NewProviderError builds a 500-class error for an unrecoverable mid-job
// failure reported or caused by the provider.
func NewProviderError(message string, err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Kind:    KindProvider,
		Message: message,
		Err:     err,
	}
}

// NewMissingArtifactError builds the error for a success outcome that carried
// no artifact locator. This is a provider logic defect, not a slow job.
func NewMissingArtifactError(providerName string) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Kind:    KindProvider,
		Message: fmt.Sprintf("%s reported success without a retrievable artifact", providerName),
		Err:     ErrMissingArtifact,
	}
}

// NewTimeoutError builds a 504-class error for an exhausted poll ceiling.
// It is distinct from a generic failure so callers can tell "the provider is
// slow" apart from "the provider rejected the request".
func NewTimeoutError(providerName string, attempts int) *Error {
	return &Error{
		Status:  http.StatusGatewayTimeout,
		Kind:    KindTimeout,
		Message: fmt.Sprintf("%s did not finish within %d poll attempts", providerName, attempts),
	}
}

// NewDownloadError builds a 500-class error for a failed artifact fetch.
// Downloads are not retried: the job already succeeded remotely, and a second
// full poll cycle would be wasteful. Callers may resubmit the whole job.
func NewDownloadError(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Kind:    KindDownload,
		Message: "artifact download failed",
		Err:     err,
	}
}

// StatusFor maps any error to its HTTP-equivalent status code.
// Unclassified errors are treated as internal failures.
func StatusFor(err error) int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Status
	}
	return http.StatusInternalServerError
}

// KindFor returns the failure kind of an error, or "" for unclassified errors.
func KindFor(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
