package model

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why a job or submission failed.
type ErrorKind string

const (
	ErrKindInvalidBundle     ErrorKind = "INVALID_BUNDLE"
	ErrKindJobAlreadyRunning ErrorKind = "JOB_ALREADY_RUNNING"
	ErrKindTransport         ErrorKind = "TRANSPORT"
	ErrKindEmptyResult       ErrorKind = "EMPTY_RESULT"
	ErrKindMalformedRecord   ErrorKind = "MALFORMED_RECORD"
	ErrKindCancelled         ErrorKind = "CANCELLED"
)

// InvalidBundleError reports required tables that are missing or empty.
// It is returned synchronously by Submit; no job is started.
type InvalidBundleError struct {
	Missing []TableName
	Empty   []TableName
}

func (e *InvalidBundleError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing tables: "+joinTables(e.Missing))
	}
	if len(e.Empty) > 0 {
		parts = append(parts, "empty tables: "+joinTables(e.Empty))
	}
	return "invalid bundle: " + strings.Join(parts, "; ")
}

// Kind returns ErrKindInvalidBundle.
func (e *InvalidBundleError) Kind() ErrorKind { return ErrKindInvalidBundle }

func joinTables(names []TableName) string {
	ss := make([]string, len(names))
	for i, n := range names {
		ss[i] = string(n)
	}
	return strings.Join(ss, ", ")
}

// JobAlreadyRunningError rejects a submission while another job is in
// flight. The running job is untouched.
type JobAlreadyRunningError struct {
	RunningID string
}

func (e *JobAlreadyRunningError) Error() string {
	return fmt.Sprintf("job %s is already running", e.RunningID)
}

// Kind returns ErrKindJobAlreadyRunning.
func (e *JobAlreadyRunningError) Kind() ErrorKind { return ErrKindJobAlreadyRunning }

// RecordFault describes one result record that failed a structural
// invariant and was dropped from classification.
type RecordFault struct {
	Index  int    `json:"index"`
	Course string `json:"course"`
	Reason string `json:"reason"`
}

// MalformedRecordError aggregates dropped result records. It is a
// warning, not a fatal failure: the remaining records are still
// classified and presented.
type MalformedRecordError struct {
	Faults []RecordFault
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("dropped %d malformed result record(s)", len(e.Faults))
}

// Kind returns ErrKindMalformedRecord.
func (e *MalformedRecordError) Kind() ErrorKind { return ErrKindMalformedRecord }

// InvalidTransitionError is returned when a job state transition is invalid.
type InvalidTransitionError struct {
	JobID string
	From  JobStatus
	To    JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid job state transition: %s → %s (job %s)", e.From, e.To, e.JobID)
}

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrConflict   ErrorCode = "CONFLICT"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the Rota API.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a VALIDATION_ERROR APIError.
func NewValidationError(msg string) *APIError {
	return &APIError{Code: ErrValidation, Message: msg}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// NewConflictError creates a CONFLICT APIError.
func NewConflictError(msg string) *APIError {
	return &APIError{Code: ErrConflict, Message: msg}
}

// NewInternalError creates an INTERNAL_ERROR APIError.
func NewInternalError(msg string) *APIError {
	return &APIError{Code: ErrInternal, Message: msg}
}
