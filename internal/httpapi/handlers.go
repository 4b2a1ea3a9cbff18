package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/analysis"
)

// expertDTO is the wire representation of a catalog expert. The system
// prompt stays server-side.
type expertDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Emoji       string   `json:"emoji,omitempty"`
	Priority    int      `json:"priority"`
	Domains     []string `json:"domains,omitempty"`
}

type analyzeRequest struct {
	Question  string   `json:"question"`
	Experts   []string `json:"experts,omitempty"`
	MaxRounds int      `json:"max_rounds,omitempty"`
	Engine    string   `json:"engine,omitempty"`
}

type analyzeResponse struct {
	RunID          string  `json:"run_id"`
	Question       string  `json:"question"`
	State          string  `json:"state"`
	ConsensusScore float64 `json:"consensus_score"`
	IterationCount int     `json:"iteration_count"`
	Report         string  `json:"report"`
}

// handleListExperts returns all catalog experts ordered by priority.
func (s *Server) handleListExperts(w http.ResponseWriter, _ *http.Request) {
	experts, err := s.catalog.ListAll()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]expertDTO, 0, len(experts))
	for _, e := range experts {
		out = append(out, expertDTO{
			Name:        e.Name,
			Description: e.Description,
			Emoji:       e.Emoji,
			Priority:    e.Priority,
			Domains:     e.Domains,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"experts": out})
}

// handleAnalyze runs a full analysis synchronously and returns the rendered
// report alongside run metadata.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Question == "" {
		respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	opts := s.defaults
	if req.MaxRounds > 0 {
		opts.MaxRounds = req.MaxRounds
	}
	if req.Engine != "" {
		opts.Engine = req.Engine
	}
	opts.OnProgress = nil

	result, err := s.controller.Run(r.Context(), req.Question, req.Experts, opts)
	if err != nil {
		if status, ok := httpStatusForDomainError(err); ok {
			respondError(w, status, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.store != nil {
		if err := s.store.Save(r.Context(), result); err != nil {
			s.logger.Warn("failed to persist run", "run_id", result.RunID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, analyzeResponse{
		RunID:          result.RunID,
		Question:       result.Question,
		State:          string(result.State),
		ConsensusScore: result.ConsensusScore,
		IterationCount: result.IterationCount,
		Report:         analysis.RenderMarkdown(result),
	})
}

// handleListRuns returns stored run summaries newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "run history is disabled")
		return
	}

	runs, err := s.store.List(r.Context(), 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns a stored run with its rendered report.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "run history is disabled")
		return
	}

	runID := chi.URLParam(r, "runID")
	result, err := s.store.Get(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"report": analysis.RenderMarkdown(result),
	})
}

// handleDeleteRun removes a stored run.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "run history is disabled")
		return
	}

	runID := chi.URLParam(r, "runID")
	if err := s.store.Delete(r.Context(), runID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "run_id": runID})
}
