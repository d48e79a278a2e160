package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/model"
)

func newTestServer(store *fakeStorage) *Server {
	cfg := config.ServerConfig{
		Addr:         ":0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return New(cfg, store, 1)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(newFakeStorage())

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestQueryEndpoint(t *testing.T) {
	store := newFakeStorage()
	store.expenses = []model.Expense{
		{ID: 1, UserID: 1, CategoryID: 1, Amount: 50,
			ExpenseDate: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)},
		{ID: 2, UserID: 1, CategoryID: 2, Amount: 150,
			ExpenseDate: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)},
	}
	srv := newTestServer(store)

	t.Run("empty query is a 400", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ai/query",
			model.AIRequest{UserID: 1, Query: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/query", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("monthly total query", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ai/query",
			model.AIRequest{UserID: 1, Query: "How much did I spend in January 2024?"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[model.AIResponse](t, rec)
		assert.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 200.0, resp.Data["total"].(float64), 0.001)
	})

	t.Run("structured filters reach the handler", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ai/query",
			model.AIRequest{
				UserID: 1,
				Query:  "compare my spending",
				Filters: map[string]any{
					"month1": 1, "year1": 2024,
					"month2": 2, "year2": 2024,
				},
			})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[model.AIResponse](t, rec)
		assert.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 200.0, resp.Data["month1_total"].(float64), 0.001)
	})

	t.Run("zero user falls back to the default", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/ai/query",
			model.AIRequest{Query: "total spend in January 2024"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[model.AIResponse](t, rec)
		assert.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 200.0, resp.Data["total"].(float64), 0.001)
	})
}

func TestExpenseEndpoints(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServer(store)

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/expenses",
			model.Expense{CategoryID: 1, Amount: 42.50, Description: "groceries",
				ExpenseDate: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)})
		require.Equal(t, http.StatusCreated, rec.Code)

		created := decodeBody[model.Expense](t, rec)
		assert.NotZero(t, created.ID)
		assert.Equal(t, int64(1), created.UserID, "default user is applied")
	})

	t.Run("create with invalid amount", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/expenses",
			model.Expense{CategoryID: 1, Amount: -1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/expenses?user_id=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		expenses := decodeBody[[]model.Expense](t, rec)
		require.Len(t, expenses, 1)
	})

	t.Run("list with bad filter", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/expenses?start=definitely-not-a-date", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/expenses/99999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete then list is empty", func(t *testing.T) {
		id := store.expenses[0].ID
		rec := doJSON(t, srv.Handler(), http.MethodDelete, fmt.Sprintf("/api/v1/expenses/%d", id), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/expenses", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeBody[[]model.Expense](t, rec))
	})
}

func TestBudgetEndpoints(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServer(store)

	t.Run("create applies defaults", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/budgets",
			model.Budget{Amount: 500, StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)})
		require.Equal(t, http.StatusCreated, rec.Code)

		created := decodeBody[model.Budget](t, rec)
		assert.Equal(t, model.PeriodMonthly, created.Period)
		assert.InDelta(t, model.DefaultAlertThreshold, created.AlertThreshold, 0.001)
	})

	t.Run("status", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/budgets/status", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		statuses := decodeBody[[]model.BudgetStatus](t, rec)
		require.Len(t, statuses, 1)
		assert.False(t, statuses[0].IsOverBudget)
	})

	t.Run("deactivate removes from active list", func(t *testing.T) {
		id := store.budgets[0].ID
		rec := doJSON(t, srv.Handler(), http.MethodPost, fmt.Sprintf("/api/v1/budgets/%d/deactivate", id), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/budgets", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeBody[[]model.Budget](t, rec))
	})

	t.Run("delete missing budget", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodDelete, "/api/v1/budgets/4242", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(newFakeStorage())

	t.Run("list seeds", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/categories", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		categories := decodeBody[[]model.Category](t, rec)
		assert.Len(t, categories, 2)
	})

	t.Run("create", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/categories", map[string]string{"name": "Travel"})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeBody[model.Category](t, rec)
		assert.Equal(t, "travel", created.Name)
	})

	t.Run("create without a name", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/categories", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
