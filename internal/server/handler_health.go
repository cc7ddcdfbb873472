package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Uptime     string `json:"uptime"`
	Store      string `json:"store"`
	ActiveJob  string `json:"active_job,omitempty"`
	JobStatus  string `json:"job_status,omitempty"`
	SolverMode string `json:"solver_mode"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	resp := healthResponse{
		Status:     "healthy",
		Version:    "0.1.0",
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Store:      "sqlite",
		SolverMode: "sim",
	}
	if s.config.SolverURL != "" {
		resp.SolverMode = "remote"
	}
	if h := s.controller.Current(); h != nil {
		snap := h.Snapshot()
		if !snap.Status.IsTerminal() {
			resp.ActiveJob = snap.ID
			resp.JobStatus = string(snap.Status)
		}
	}

	respondOK(w, reqID, resp)
}
