package apperror

import (
	"errors"
	"fmt"
)

// Kind is a stable tag identifying the failure class of a pipeline stage.
type Kind string

const (
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindNoRelevantSchema    Kind = "NO_RELEVANT_SCHEMA"
	KindSqlGenerationFailed Kind = "SQL_GENERATION_FAILED"
	KindUnsafeQueryRejected Kind = "UNSAFE_QUERY_REJECTED"
	KindExecutionFailed     Kind = "EXECUTION_FAILED"
	KindInternal            Kind = "INTERNAL"
)

// Reason narrows KindExecutionFailed into actionable sub-classes.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonTimeout           Reason = "TIMEOUT"
	ReasonAuthentication    Reason = "AUTHENTICATION"
	ReasonConnectivity      Reason = "CONNECTIVITY"
	ReasonInvalidIdentifier Reason = "INVALID_IDENTIFIER"
)

// AppError carries a stable kind plus a human-readable message. The wrapped
// error is for logs only and never reaches the response payload.
type AppError struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func WithReason(kind Kind, reason Reason, message string, err error) *AppError {
	return &AppError{Kind: kind, Reason: reason, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// ReasonOf extracts the execution sub-class, if any.
func ReasonOf(err error) Reason {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ReasonNone
}

// MessageOf returns the user-safe message for an error chain.
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
