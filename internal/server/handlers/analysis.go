// internal/server/handlers/analysis.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"convosense/internal/domain/analysis"
	"convosense/internal/service/pipeline"
)

// AnalysisRunner triggers background analysis runs
type AnalysisRunner interface {
	Start(query, sessionID string, opts pipeline.Options)
}

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	runner AnalysisRunner
	store  analysis.ReportStore
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(runner AnalysisRunner, store analysis.ReportStore) *AnalysisHandler {
	return &AnalysisHandler{
		runner: runner,
		store:  store,
	}
}

type analyzeRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	MaxItems  int    `json:"max_items"`
	UserID    string `json:"uid"`
}

// StartAnalysis triggers an analysis run and returns immediately with an
// acknowledgement; progress and the final report are delivered over the
// session's event stream.
func (h *AnalysisHandler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		respondWithError(w, http.StatusBadRequest, "Query is required", nil)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	h.runner.Start(req.Query, sessionID, pipeline.Options{
		MaxItems: req.MaxItems,
		UserID:   req.UserID,
	})

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":     "started",
		"message":    fmt.Sprintf("Analysis started for: %s", req.Query),
		"session_id": sessionID,
	})
}

// ListReports returns the most recent persisted reports
func (h *AnalysisHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	reports, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}

	if reports == nil {
		reports = []analysis.Report{}
	}

	respondWithJSON(w, http.StatusOK, reports)
}
