package server

import (
	"encoding/json"
	"net/http"

	"github.com/spendsense/spendsense/internal/model"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.GetCategories(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	s.respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := s.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	s.respondJSON(w, http.StatusCreated, category)
}
