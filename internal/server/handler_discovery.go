package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "Rota API",
		Version:     "v1",
		Description: "Rota timetable scheduling: bundle submission, job tracking, and classified results",
		Endpoints: []endpointInfo{
			{"/api/v1/jobs", []string{"GET", "POST"}, "Scheduling job management. POST submits an input bundle"},
			{"/api/v1/jobs/{id}", []string{"GET"}, "Single job status and counts"},
			{"/api/v1/jobs/{id}/cancel", []string{"POST"}, "Cancel a running job"},
			{"/api/v1/jobs/{id}/results", []string{"GET"}, "Classified assignment records in canonical order. Accepts ?where= row filter"},
			{"/api/v1/jobs/{id}/failures", []string{"GET"}, "Sessions the solver could not place"},
			{"/api/v1/sse/jobs/{id}", []string{"GET"}, "Live job status and phase stream (SSE)"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
