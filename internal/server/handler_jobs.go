package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/rota/internal/classify"
	"github.com/me/rota/internal/controller"
	"github.com/me/rota/internal/filter"
	"github.com/me/rota/pkg/model"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req struct {
		Tables map[string][]map[string]string `json:"tables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}

	tables := make(map[model.TableName]model.Table, len(req.Tables))
	for name, rows := range req.Tables {
		tbl := make(model.Table, len(rows))
		for i, row := range rows {
			tbl[i] = model.Row(row)
		}
		tables[model.TableName(name)] = tbl
	}
	bundle := model.NewInputBundle(tables)

	h, err := s.controller.Submit(s.jobCtx, bundle)
	if err != nil {
		var invalid *model.InvalidBundleError
		var running *model.JobAlreadyRunningError
		switch {
		case errors.As(err, &invalid):
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(invalid.Error()))
		case errors.As(err, &running):
			respondError(w, reqID, http.StatusConflict, model.NewConflictError(running.Error()))
		default:
			respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		}
		return
	}

	job := h.Snapshot()
	if err := s.store.CreateJob(r.Context(), &job); err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}

	go s.persistJob(h)

	s.logger.Info("job created", "id", job.ID, "tables", bundle.Len())
	respondCreated(w, reqID, job)
}

// persistJob mirrors a job's event sequence into the store. On success
// the classified result is stored, replacing any previous result for the
// job ID outright.
func (s *Server) persistJob(h *controller.Handle) {
	// Persistence must survive job cancellation, so it runs on its own
	// context rather than the job's.
	ctx := context.Background()

	for ev := range h.Events() {
		job := h.Snapshot()

		// Write the result before the SUCCEEDED status so a client that
		// sees the terminal status always finds the rows.
		if ev.Type == model.EventSucceeded && ev.Result != nil {
			res := classify.Classify(ev.Result.Assignments)
			if err := s.store.ReplaceResult(ctx, job.ID, res.Records, ev.Result.Unassigned); err != nil {
				s.logger.Error("persist result", "job_id", job.ID, "error", err)
			}
		}

		if err := s.store.UpdateJob(ctx, &job); err != nil {
			s.logger.Error("persist job", "job_id", job.ID, "error", err)
		}
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		opts.Status = status
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.Clamp()

	jobs, total, err := s.store.ListJobs(r.Context(), opts)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}

	respondList(w, reqID, jobs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if job == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("job", id))
		return
	}
	respondOK(w, reqID, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if job == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("job", id))
		return
	}
	if job.Status.IsTerminal() {
		respondError(w, reqID, http.StatusConflict,
			model.NewConflictError("cannot cancel job in status "+string(job.Status)))
		return
	}

	h := s.controller.Current()
	if h == nil || h.Snapshot().ID != id {
		respondError(w, reqID, http.StatusConflict,
			model.NewConflictError("job "+id+" is not controlled by this server"))
		return
	}

	s.controller.Cancel(h)

	snap := h.Snapshot()
	respondOK(w, reqID, map[string]any{
		"id":         snap.ID,
		"status":     snap.Status,
		"error_kind": snap.ErrorKind,
	})
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if job == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("job", id))
		return
	}
	if job.Status != model.JobStatusSucceeded {
		respondError(w, reqID, http.StatusConflict,
			model.NewConflictError("job "+id+" has no results (status "+string(job.Status)+")"))
		return
	}

	records, unassigned, err := s.store.GetResult(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}

	if expr := r.URL.Query().Get("where"); expr != "" {
		f, err := filter.Compile(expr)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
		records, err = f.Apply(records)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
			return
		}
	}

	respondOK(w, reqID, map[string]any{
		"job_id":      id,
		"assignments": records,
		"unassigned":  unassigned,
	})
}

func (s *Server) handleGetFailures(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if job == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("job", id))
		return
	}
	if job.Status != model.JobStatusSucceeded {
		respondError(w, reqID, http.StatusConflict,
			model.NewConflictError("job "+id+" has no results (status "+string(job.Status)+")"))
		return
	}

	_, unassigned, err := s.store.GetResult(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}

	respondOK(w, reqID, map[string]any{
		"job_id":     id,
		"unassigned": unassigned,
	})
}
