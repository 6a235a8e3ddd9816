package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/http/response"
	"github.com/knodemy/lecture-server/internal/service"
)

// generateRequest is the body for date-targeted generation runs.
type generateRequest struct {
	Date string `json:"date" validate:"required,rundate"`
}

// handleGenerateForDate runs the batch pipeline for the requested date and
// returns the full summary. Generation is synchronous; the write timeout is
// sized for it.
func (s *Server) handleGenerateForDate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.runGeneration(w, r, req.Date)
}

func (s *Server) handleGenerateToday(w http.ResponseWriter, r *http.Request) {
	s.runGeneration(w, r, service.Today())
}

func (s *Server) handleGenerateTomorrow(w http.ResponseWriter, r *http.Request) {
	s.runGeneration(w, r, service.Tomorrow())
}

func (s *Server) runGeneration(w http.ResponseWriter, r *http.Request, date string) {
	summary, err := s.batch.GenerateForDate(r.Context(), date)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, summary, s.logger)
}

// handlePreviewDate lists the courses a run would process, without running
// anything. The date comes from the query string and defaults to today.
func (s *Server) handlePreviewDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = service.Today()
	}
	if err := s.validator.Validate(generateRequest{Date: date}); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	previews, err := s.batch.PreviewForDate(r.Context(), date)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]any{
		"target_date": date,
		"courses":     previews,
	}, s.logger)
}

// handleGetRun returns the persisted summary of one generation run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	log, err := s.store.GetGenerationLog(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	var summary domain.BatchSummary
	if err := json.Unmarshal([]byte(log.Summary), &summary); err != nil {
		response.InternalError(w, "stored summary is unreadable", s.logger)
		return
	}
	response.Success(w, summary, s.logger)
}

// handleListRuns returns recent generation runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, "limit must be an integer between 1 and 200", s.logger)
			return
		}
		limit = parsed
	}

	logs, err := s.store.RecentGenerationLogs(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, logs, s.logger)
}

// handleListVoices returns the supported voice catalog.
func (s *Server) handleListVoices(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"voices": domain.Voices,
	}, s.logger)
}
