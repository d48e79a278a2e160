package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spendsense/spendsense/internal/model"
)

// handleQuery runs the full pipeline: parse the free-text query, merge the
// caller's structured filters, dispatch, and return the response envelope.
// The envelope carries its own success/failed status, so the HTTP code is
// 200 for anything the pipeline could process.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req model.AIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		if errors.Is(err, model.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	userID := req.UserID
	if userID == 0 {
		userID = s.defaultUser
	}

	parsed := s.parser.Parse(req.Query)
	for key, value := range req.Filters {
		parsed.Filters[key] = value
	}

	slog.Debug("parsed query",
		"intent", parsed.Intent,
		"query_type", parsed.QueryType,
		"category", parsed.Category,
		"request_id", RequestIDFromContext(r.Context()))

	resp := s.advisor.ProcessQuery(r.Context(), parsed, userID)
	s.respondJSON(w, http.StatusOK, resp)
}
