package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/rota/pkg/model"
)

// handleSSEJob streams job updates via Server-Sent Events.
// GET /api/v1/sse/jobs/{id}
func (s *Server) handleSSEJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reqID := RequestIDFromContext(r.Context())

	// Check if job exists.
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if job == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("job", id))
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Send initial state.
	if err := sendSSEEvent(w, flusher, "init", job); err != nil {
		s.logger.Debug("sse client disconnected", "id", id, "error", err)
		return
	}
	if job.Status.IsTerminal() {
		sendSSEEvent(w, flusher, "complete", job)
		return
	}

	// Poll for updates until the job is terminal or the client disconnects.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	lastStatus := job.Status
	lastPhase := job.Phase

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			job, err = s.store.GetJob(r.Context(), id)
			if err != nil {
				s.logger.Error("sse fetch error", "id", id, "error", err)
				continue
			}
			if job == nil {
				return
			}

			// Send update if status or phase changed.
			if job.Status != lastStatus || job.Phase != lastPhase {
				if err := sendSSEEvent(w, flusher, "update", job); err != nil {
					s.logger.Debug("sse client disconnected", "id", id)
					return
				}
				lastStatus = job.Status
				lastPhase = job.Phase
			} else {
				// Send heartbeat.
				fmt.Fprintf(w, ": heartbeat\n\n")
				flusher.Flush()
			}

			// Stop streaming once the job is terminal.
			if job.Status.IsTerminal() {
				sendSSEEvent(w, flusher, "complete", job)
				return
			}
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
