package model

// JobStatus represents the lifecycle state of a scheduling Job.
type JobStatus string

const (
	JobStatusIdle       JobStatus = "IDLE"
	JobStatusSubmitting JobStatus = "SUBMITTING"
	JobStatusRunning    JobStatus = "RUNNING"
	JobStatusSucceeded  JobStatus = "SUCCEEDED"
	JobStatusFailed     JobStatus = "FAILED"
)

// String returns the string representation of the job status.
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the job is in a final state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed:
		return true
	}
	return false
}

// ValidJobTransitions defines the allowed state transitions for Jobs.
// Terminal states have no outgoing edges; a new submission starts a new Job.
var ValidJobTransitions = map[JobStatus][]JobStatus{
	JobStatusIdle:       {JobStatusSubmitting},
	JobStatusSubmitting: {JobStatusRunning, JobStatusFailed},
	JobStatusRunning:    {JobStatusSucceeded, JobStatusFailed},
}

// CanTransitionTo returns true if moving from the current status to next is valid.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range ValidJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// JobPhase is a named solver progress milestone. Phases are strictly
// ordered for a successful run; a job may fail at any phase.
type JobPhase string

const (
	PhaseUploading                JobPhase = "UPLOADING"
	PhaseInitializing             JobPhase = "INITIALIZING"
	PhaseSearchingFeasible        JobPhase = "SEARCHING_FEASIBLE"
	PhaseEnforcingHardConstraints JobPhase = "ENFORCING_HARD_CONSTRAINTS"
	PhaseOptimizingSoft           JobPhase = "OPTIMIZING_SOFT"
	PhaseExporting                JobPhase = "EXPORTING"
)

// PhaseOrder is the fixed progression of solver phases.
var PhaseOrder = []JobPhase{
	PhaseUploading,
	PhaseInitializing,
	PhaseSearchingFeasible,
	PhaseEnforcingHardConstraints,
	PhaseOptimizingSoft,
	PhaseExporting,
}

// String returns the string representation of the phase.
func (p JobPhase) String() string {
	return string(p)
}

// PhaseIndex returns the position of p in PhaseOrder, or -1 if p is not a
// known phase.
func PhaseIndex(p JobPhase) int {
	for i, known := range PhaseOrder {
		if known == p {
			return i
		}
	}
	return -1
}
