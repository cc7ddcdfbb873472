package model

import "time"

// Job is an immutable snapshot of one scheduling job's state. The live
// state is owned exclusively by the controller; consumers only ever see
// copies.
type Job struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	Phase        JobPhase   `json:"phase,omitempty"`
	ErrorKind    ErrorKind  `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Assigned     int        `json:"assigned"`
	Unassigned   int        `json:"unassigned"`
	Dropped      int        `json:"dropped"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// JobEventType discriminates the events observable on a job handle.
type JobEventType string

const (
	EventPhaseChanged JobEventType = "PHASE_CHANGED"
	EventSucceeded    JobEventType = "SUCCEEDED"
	EventFailed       JobEventType = "FAILED"
)

// JobEvent is one entry in a job's finite, strictly ordered event
// sequence. Exactly one terminal event (Succeeded or Failed) ends the
// sequence.
type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`
	Phase JobPhase     `json:"phase,omitempty"`

	// Result is set on EventSucceeded only.
	Result *SolveResult `json:"result,omitempty"`

	// ErrKind/ErrMessage are set on EventFailed only.
	ErrKind    ErrorKind `json:"error_kind,omitempty"`
	ErrMessage string    `json:"error_message,omitempty"`

	At time.Time `json:"at"`
}

// Terminal returns true for Succeeded and Failed events.
func (e JobEvent) Terminal() bool {
	return e.Type == EventSucceeded || e.Type == EventFailed
}

// SolveResult is the raw result set of a finished solver run, before
// classification.
type SolveResult struct {
	Assignments []AssignmentRecord  `json:"assignments"`
	Unassigned  []UnassignedSession `json:"unassigned,omitempty"`
}
