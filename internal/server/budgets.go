package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/spendsense/spendsense/internal/common"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/storage"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.ListActiveBudgets(r.Context(), s.userFromQuery(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	s.respondJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var budget model.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if budget.UserID == 0 {
		budget.UserID = s.defaultUser
	}

	created, err := s.store.CreateBudget(r.Context(), &budget)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidBudget) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to create budget")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

// handleBudgetStatus returns the derived per-period status for every active
// budget the user has.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.budgets.StatusAll(r.Context(), s.userFromQuery(r), time.Now().UTC())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to compute budget status")
		return
	}
	if statuses == nil {
		statuses = []model.BudgetStatus{}
	}
	s.respondJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleDeactivateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := s.store.DeactivateBudget(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "budget not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to deactivate budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := s.store.DeleteBudget(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "budget not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to delete budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
