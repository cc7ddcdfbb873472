package model

import "testing"

func TestJobStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{JobStatusIdle, false},
		{JobStatusSubmitting, false},
		{JobStatusRunning, false},
		{JobStatusSucceeded, true},
		{JobStatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("JobStatus(%q).IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  JobStatus
		to    JobStatus
		valid bool
	}{
		// Valid transitions
		{JobStatusIdle, JobStatusSubmitting, true},
		{JobStatusSubmitting, JobStatusRunning, true},
		{JobStatusSubmitting, JobStatusFailed, true},
		{JobStatusRunning, JobStatusSucceeded, true},
		{JobStatusRunning, JobStatusFailed, true},

		// Invalid transitions
		{JobStatusIdle, JobStatusRunning, false},
		{JobStatusIdle, JobStatusSucceeded, false},
		{JobStatusSubmitting, JobStatusSucceeded, false},
		{JobStatusSucceeded, JobStatusRunning, false},
		{JobStatusSucceeded, JobStatusFailed, false},
		{JobStatusFailed, JobStatusRunning, false},
		{JobStatusRunning, JobStatusIdle, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("JobStatus(%q).CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestPhaseIndex(t *testing.T) {
	for i, p := range PhaseOrder {
		if got := PhaseIndex(p); got != i {
			t.Errorf("PhaseIndex(%q) = %d, want %d", p, got, i)
		}
	}
	if got := PhaseIndex(JobPhase("BOGUS")); got != -1 {
		t.Errorf("PhaseIndex(BOGUS) = %d, want -1", got)
	}
}
