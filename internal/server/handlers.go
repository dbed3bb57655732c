package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/executor"
	"github.com/sozercan/upi-search/internal/logger"
	"github.com/sozercan/upi-search/internal/search"
	"github.com/sozercan/upi-search/internal/translator"
)

const defaultHistoryLimit = 20

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	defer r.Body.Close()

	var req apimodels.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	log.Debug("Received search request", zap.String("query", req.Query), zap.String("facet", req.Facet))

	result, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		log.Error("Search request failed", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.searcher.History(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("History request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []apimodels.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, apimodels.HistoryResponse{Entries: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.searcher.HealthCheck(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, translator.ErrInvalidQuery), errors.Is(err, executor.ErrQueryFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, executor.ErrBackendUnreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apimodels.ErrorResponse{Error: msg})
}
