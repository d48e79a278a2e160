package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

// categoryBreakdown groups spending by category inside the window. An empty
// window yields an explicit empty breakdown with success status.
func (a *Advisor) categoryBreakdown(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start, end := resolveWindow(parsed.Time, now)

	breakdown, err := a.store.CategorySummary(ctx, userID, service.ExpenseFilter{Start: start, End: end})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("category summary: %w", err)
	}

	scope := windowLabel(parsed.Time, now)
	data := map[string]any{"breakdown": breakdown}

	if len(breakdown) == 0 {
		return successResponse(fmt.Sprintf("No expenses recorded %s yet.", scope), data), nil
	}

	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if breakdown[names[i]] != breakdown[names[j]] {
			return breakdown[names[i]] > breakdown[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, formatAmount(breakdown[name])))
	}

	text := fmt.Sprintf("Your spending %s: %s.", scope, strings.Join(parts, ", "))
	return successResponse(text, data), nil
}

// highestSpendCategory picks the category with the largest summed amount. An
// empty window is a failure here: "no data" is different from "zero spend".
func (a *Advisor) highestSpendCategory(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	start, end := resolveWindow(parsed.Time, now)

	breakdown, err := a.store.CategorySummary(ctx, userID, service.ExpenseFilter{Start: start, End: end})
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("category summary: %w", err)
	}

	scope := windowLabel(parsed.Time, now)
	if len(breakdown) == 0 {
		return failureResponse(fmt.Sprintf("I couldn't find any expenses %s, so there is no top category yet.", scope)), nil
	}

	var topName string
	var topAmount float64
	for name, amount := range breakdown {
		if amount > topAmount || (amount == topAmount && (topName == "" || name < topName)) {
			topName = name
			topAmount = amount
		}
	}

	text := fmt.Sprintf("Your highest spending category %s is %s at %s.", scope, topName, formatAmount(topAmount))
	data := map[string]any{
		"category": topName,
		"amount":   topAmount,
	}

	return successResponse(text, data), nil
}
