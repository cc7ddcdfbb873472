// Package controller drives a single scheduling job through its
// lifecycle (Idle → Submitting → Running(phase) → Succeeded|Failed) and
// exposes it as an observable event sequence.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/me/rota/internal/classify"
	"github.com/me/rota/internal/report"
	"github.com/me/rota/internal/solver"
	"github.com/me/rota/pkg/model"
)

// eventBuffer bounds a handle's event channel. A job emits at most one
// event per phase plus one terminal event, so this can never fill.
var eventBuffer = len(model.PhaseOrder) + 2

// Controller manages exactly one in-flight scheduling job at a time.
type Controller struct {
	transport solver.Transport
	sink      report.Sink // optional
	logger    *slog.Logger

	mu      sync.Mutex
	current *Handle
}

// Option configures optional Controller dependencies.
type Option func(*Controller)

// WithSink attaches a presentation sink. The controller calls
// OnJobEvent for every event and OnClassifiedResult once per success;
// these are its only outward presentation calls.
func WithSink(sink report.Sink) Option {
	return func(c *Controller) {
		c.sink = sink
	}
}

// New creates a Controller backed by the given transport.
func New(transport solver.Transport, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		logger:    logger.With("component", "controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates the bundle and starts a new job. It fails
// synchronously with *model.InvalidBundleError when a required table is
// missing or empty (no job is started, no event emitted) and with
// *model.JobAlreadyRunningError while another job is in flight.
//
// ctx bounds the job's lifetime, not just the call: cancelling it cancels
// the job.
func (c *Controller) Submit(ctx context.Context, bundle *model.InputBundle) (*Handle, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.current != nil && !c.current.Done() {
		running := c.current.Snapshot().ID
		c.mu.Unlock()
		return nil, &model.JobAlreadyRunningError{RunningID: running}
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		job: model.Job{
			ID:        uuid.New().String(),
			Status:    model.JobStatusSubmitting,
			CreatedAt: time.Now().UTC(),
		},
		lastPhase: -1,
		cancel:    cancel,
		sink:      c.sink,
		logger:    c.logger,
	}
	c.current = h
	c.mu.Unlock()

	c.logger.Info("job submitted", "job_id", h.job.ID, "tables", bundle.Len())

	go func() {
		result, err := c.transport.Run(runCtx, bundle, h.notifyPhase)
		h.finish(result, err)
	}()

	return h, nil
}

// Current returns the handle of the most recently submitted job, or nil.
func (c *Controller) Current() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Cancel transitions a Running job to Failed(Cancelled). It is a no-op on
// a job that is already terminal. When Cancel returns, no further
// PhaseChanged event can be observed for the handle; only the terminal
// Failed(Cancelled) event follows.
func (c *Controller) Cancel(h *Handle) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return
	}
	h.failLocked(model.ErrKindCancelled, "cancelled by caller")
	h.mu.Unlock()

	h.cancel()
	h.dispatchSink()
	c.logger.Info("job cancelled", "job_id", h.job.ID)
}

// Handle observes one job. Its event sequence is finite and strictly
// chronological: zero or more PhaseChanged events followed by exactly one
// terminal event.
type Handle struct {
	mu        sync.Mutex
	job       model.Job
	events    []model.JobEvent
	subs      []chan model.JobEvent
	lastPhase int
	done      bool

	cancel context.CancelFunc
	sink   report.Sink
	logger *slog.Logger

	// sinkMu serializes sink deliveries in log order. sinkNext, guarded
	// by mu, is the index of the next event the sink has not received.
	sinkMu   sync.Mutex
	sinkNext int
}

// Snapshot returns an immutable copy of the job's current state.
// Consumers never see a mutable reference into live state.
func (h *Handle) Snapshot() model.Job {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.job
}

// Done reports whether the job has reached a terminal state.
func (h *Handle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Events returns a channel that replays every event emitted so far and
// then delivers live events in order. The channel is closed after the
// terminal event. Each call returns an independent replay.
func (h *Handle) Events() <-chan model.JobEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan model.JobEvent, eventBuffer)
	for _, ev := range h.events {
		ch <- ev
	}
	if h.done {
		close(ch)
	} else {
		h.subs = append(h.subs, ch)
	}
	return ch
}

// notifyPhase is the transport's phase callback. Phases must advance
// through the fixed order; stale or repeated notifications are dropped.
// Nothing is delivered after the terminal event.
func (h *Handle) notifyPhase(phase model.JobPhase) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return
	}

	idx := model.PhaseIndex(phase)
	if idx < 0 || idx <= h.lastPhase {
		h.mu.Unlock()
		h.logger.Warn("dropping out-of-order phase", "job_id", h.job.ID, "phase", phase)
		return
	}
	h.lastPhase = idx

	if h.job.Status == model.JobStatusSubmitting {
		now := time.Now().UTC()
		h.job.Status = model.JobStatusRunning
		h.job.StartedAt = &now
	}
	h.job.Phase = phase

	ev := model.JobEvent{
		JobID: h.job.ID,
		Type:  model.EventPhaseChanged,
		Phase: phase,
		At:    time.Now().UTC(),
	}
	h.recordLocked(ev)
	h.mu.Unlock()

	h.dispatchSink()
}

// finish consumes the transport's outcome. Zero usable records after
// classification is a failure (EmptyResult), never a vacuous success:
// a payload whose records are all malformed counts as empty.
func (h *Handle) finish(result *model.SolveResult, err error) {
	h.mu.Lock()
	if h.done {
		// Cancelled while the transport was unwinding; the terminal
		// event has already been delivered.
		h.mu.Unlock()
		return
	}

	if err != nil {
		kind := model.ErrKindTransport
		if errors.Is(err, context.Canceled) {
			kind = model.ErrKindCancelled
		}
		h.failLocked(kind, err.Error())
		h.mu.Unlock()
		h.dispatchSink()
		return
	}

	var classified classify.Result
	if result != nil {
		classified = classify.Classify(result.Assignments)
	}
	if len(classified.Records) == 0 {
		msg := "solver returned no assignments"
		if n := len(classified.Dropped); n > 0 {
			msg = fmt.Sprintf("solver returned no usable assignments (%d malformed)", n)
			h.job.Dropped = n
		}
		h.failLocked(model.ErrKindEmptyResult, msg)
		h.mu.Unlock()
		h.dispatchSink()
		return
	}

	now := time.Now().UTC()
	h.job.Status = model.JobStatusSucceeded
	h.job.Phase = ""
	h.job.FinishedAt = &now
	h.job.Assigned = len(classified.Records)
	h.job.Unassigned = len(result.Unassigned)
	h.job.Dropped = len(classified.Dropped)

	ev := model.JobEvent{
		JobID:  h.job.ID,
		Type:   model.EventSucceeded,
		Result: result,
		At:     now,
	}
	h.recordLocked(ev)
	h.closeSubsLocked()
	sink := h.sink
	h.mu.Unlock()

	h.dispatchSink()
	if sink != nil {
		sink.OnClassifiedResult(classified, result.Unassigned)
	}
}

// failLocked records the terminal Failed event and closes subscriptions.
// Callers hold h.mu and must call dispatchSink after unlocking.
func (h *Handle) failLocked(kind model.ErrorKind, msg string) {
	now := time.Now().UTC()
	h.job.Status = model.JobStatusFailed
	h.job.Phase = ""
	h.job.ErrorKind = kind
	h.job.ErrorMessage = msg
	h.job.FinishedAt = &now

	ev := model.JobEvent{
		JobID:      h.job.ID,
		Type:       model.EventFailed,
		ErrKind:    kind,
		ErrMessage: msg,
		At:         now,
	}
	h.recordLocked(ev)
	h.closeSubsLocked()
}

// recordLocked appends to the replay log and fans out to subscribers.
// Channel sends cannot block: capacity covers the maximum event count.
func (h *Handle) recordLocked(ev model.JobEvent) {
	h.events = append(h.events, ev)
	for _, ch := range h.subs {
		ch <- ev
	}
	if ev.Terminal() {
		h.done = true
	}
}

func (h *Handle) closeSubsLocked() {
	for _, ch := range h.subs {
		close(ch)
	}
	h.subs = nil
}

// dispatchSink delivers every not-yet-delivered event to the sink in
// recorded order. sinkMu serializes concurrent dispatchers, so the sink
// always observes the event log's order regardless of which goroutine
// recorded an event; once a caller returns from dispatchSink, every
// event recorded before its call has been delivered.
func (h *Handle) dispatchSink() {
	if h.sink == nil {
		return
	}
	h.sinkMu.Lock()
	defer h.sinkMu.Unlock()
	for {
		h.mu.Lock()
		if h.sinkNext >= len(h.events) {
			h.mu.Unlock()
			return
		}
		ev := h.events[h.sinkNext]
		h.sinkNext++
		h.mu.Unlock()

		h.sink.OnJobEvent(ev)
	}
}
