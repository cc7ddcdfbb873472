package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/me/rota/pkg/model"
)

// HTTPConfig holds settings for a remote solver backend.
type HTTPConfig struct {
	BaseURL      string
	PollInterval time.Duration
	HTTPClient   *http.Client
}

// DefaultHTTPConfig returns sensible defaults.
func DefaultHTTPConfig(baseURL string) HTTPConfig {
	return HTTPConfig{
		BaseURL:      baseURL,
		PollInterval: 2 * time.Second,
	}
}

// HTTPTransport submits a bundle to a remote solver service and polls it
// for phase progress until the run finishes. The solver contract:
//
//	POST {base}/solve               {"tables": {...}}        -> {"id": "..."}
//	GET  {base}/solve/{id}          -> {"status": "running"|"succeeded"|"failed",
//	                                    "phase": "...", "error": "...",
//	                                    "result": {assignments, unassigned}}
type HTTPTransport struct {
	config HTTPConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPTransport creates a transport for a remote solver.
func NewHTTPTransport(cfg HTTPConfig, logger *slog.Logger) *HTTPTransport {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &HTTPTransport{
		config: cfg,
		client: client,
		logger: logger.With("component", "http-transport"),
	}
}

type solveStatus struct {
	Status string          `json:"status"`
	Phase  string          `json:"phase"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Run implements Transport.
func (t *HTTPTransport) Run(ctx context.Context, bundle *model.InputBundle, notify func(model.JobPhase)) (*model.SolveResult, error) {
	// The upload itself is the first phase.
	notify(model.PhaseUploading)

	body, err := json.Marshal(map[string]any{"tables": TablesPayload(bundle)})
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := t.doJSON(ctx, http.MethodPost, "/solve", bytes.NewReader(body), &created); err != nil {
		return nil, fmt.Errorf("submit bundle: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("solver response missing job id")
	}
	t.logger.Debug("solver accepted bundle", "solver_job_id", created.ID)

	lastPhase := model.PhaseUploading
	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var status solveStatus
		if err := t.doJSON(ctx, http.MethodGet, "/solve/"+created.ID, nil, &status); err != nil {
			return nil, fmt.Errorf("poll solver: %w", err)
		}

		if phase := model.JobPhase(status.Phase); model.PhaseIndex(phase) > model.PhaseIndex(lastPhase) {
			// Replay any phases the solver passed through between polls,
			// in order, so no milestone is skipped.
			for _, p := range model.PhaseOrder {
				if model.PhaseIndex(p) > model.PhaseIndex(lastPhase) && model.PhaseIndex(p) <= model.PhaseIndex(phase) {
					notify(p)
				}
			}
			lastPhase = phase
		}

		switch status.Status {
		case "succeeded":
			res, err := DecodeResult(status.Result)
			if err != nil {
				return nil, err
			}
			return res, nil
		case "failed":
			if status.Error == "" {
				status.Error = "solver reported failure"
			}
			return nil, fmt.Errorf("solver: %s", status.Error)
		}
	}
}

func (t *HTTPTransport) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("solver returned %d: %s", resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
