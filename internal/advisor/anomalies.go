package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

const (
	anomalyWindowDays   = 180
	anomalyMinSamples   = 5
	anomalyIQRMultiple  = 1.5
	anomalyHighMultiple = 3.0
)

type anomaly struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Severity    string  `json:"severity"`
	Amount      float64 `json:"amount"`
}

// detectAnomalies flags transactions far above a category's interquartile
// range over the trailing 180 days. Categories with fewer than five
// transactions are skipped rather than flagged; finding nothing unusual is
// a success, not a failure.
func (a *Advisor) detectAnomalies(ctx context.Context, _ model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start := now.AddDate(0, 0, -anomalyWindowDays)

	expenses, err := a.store.ListExpenses(ctx, userID, service.ExpenseFilter{Start: &start, End: &now})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("list expenses: %w", err)
	}

	categoryNames, err := a.categoryNameIndex(ctx)
	if err != nil {
		return model.AIResponse{}, err
	}

	byCategory := make(map[int64][]model.Expense)
	for _, expense := range expenses {
		byCategory[expense.CategoryID] = append(byCategory[expense.CategoryID], expense)
	}

	var anomalies []anomaly
	for categoryID, rows := range byCategory {
		if len(rows) < anomalyMinSamples {
			continue
		}

		amounts := make([]float64, len(rows))
		for i, row := range rows {
			amounts[i] = row.Amount
		}
		sort.Float64s(amounts)

		n := len(amounts)
		q1 := amounts[n/4]
		q3 := amounts[(3*n)/4]
		iqr := q3 - q1
		upper := q3 + anomalyIQRMultiple*iqr
		high := q3 + anomalyHighMultiple*iqr

		name := categoryNames[categoryID]
		if name == "" {
			name = fmt.Sprintf("category %d", categoryID)
		}

		for _, row := range rows {
			if row.Amount <= upper {
				continue
			}
			severity := "medium"
			if row.Amount > high {
				severity = "high"
			}
			anomalies = append(anomalies, anomaly{
				Category:    name,
				Description: row.Description,
				Date:        row.ExpenseDate.Format("2006-01-02"),
				Severity:    severity,
				Amount:      row.Amount,
			})
		}
	}

	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].Severity != anomalies[j].Severity {
			return anomalies[i].Severity == "high"
		}
		return anomalies[i].Amount > anomalies[j].Amount
	})

	data := map[string]any{"anomalies": anomalies}
	if len(anomalies) == 0 {
		return successResponse("No unusual spending detected in the last six months; everything looks steady.", data), nil
	}

	text := fmt.Sprintf("Found %d unusual transaction(s) in the last six months; the largest is %s in %s.",
		len(anomalies), formatAmount(anomalies[0].Amount), anomalies[0].Category)
	return successResponse(text, data), nil
}

// categoryNameIndex loads all categories once per request for id lookups.
func (a *Advisor) categoryNameIndex(ctx context.Context) (map[int64]string, error) {
	categories, err := a.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	index := make(map[int64]string, len(categories))
	for _, category := range categories {
		index[category.ID] = category.Name
	}
	return index, nil
}
