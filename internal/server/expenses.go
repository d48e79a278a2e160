package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spendsense/spendsense/internal/common"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
	"github.com/spendsense/spendsense/internal/storage"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := expenseFilterFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.store.ListExpenses(r.Context(), s.userFromQuery(r), filter)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	s.respondJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var expense model.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if expense.UserID == 0 {
		expense.UserID = s.defaultUser
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = time.Now().UTC()
	}

	created, err := s.store.CreateExpense(r.Context(), &expense)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidExpense) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	expense, err := s.store.GetExpenseByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	s.respondJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var expense model.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	expense.ID = id
	if expense.UserID == 0 {
		expense.UserID = s.defaultUser
	}

	if err := s.store.UpdateExpense(r.Context(), &expense); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "expense not found")
		case errors.Is(err, storage.ErrInvalidExpense):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.respondError(w, http.StatusInternalServerError, "failed to update expense")
		}
		return
	}

	updated, err := s.store.GetExpenseByID(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "expense not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userFromQuery resolves the acting user from ?user_id, falling back to the
// configured default.
func (s *Server) userFromQuery(r *http.Request) int64 {
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return s.defaultUser
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// expenseFilterFromQuery builds a filter from ?category_id, ?start, ?end
// (RFC 3339 dates) and ?limit.
func expenseFilterFromQuery(r *http.Request) (service.ExpenseFilter, error) {
	var filter service.ExpenseFilter
	q := r.URL.Query()

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New("invalid category_id")
		}
		filter.CategoryID = &id
	}
	if raw := q.Get("start"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			return filter, errors.New("invalid start date")
		}
		filter.Start = &start
	}
	if raw := q.Get("end"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			return filter, errors.New("invalid end date")
		}
		filter.End = &end
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}

// parseDate accepts full RFC 3339 timestamps or bare dates.
func parseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}
