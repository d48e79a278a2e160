package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/spendsense/spendsense/internal/model"
)

const maxOnTrackShown = 3

// budgetCheck reports the current-period status of every active budget,
// grouped into over-budget, approaching-threshold, and on-track buckets.
// The headline message follows a fixed priority: over-budget beats
// approaching, which beats the on-track summary.
func (a *Advisor) budgetCheck(ctx context.Context, _ model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()

	statuses, err := a.budgets.StatusAll(ctx, userID, now)
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("budget statuses: %w", err)
	}

	if len(statuses) == 0 {
		resp := successResponse("You don't have any budgets set up yet. Create one and I can keep an eye on it for you.", nil)
		resp.NextAction = "create_budget"
		return resp, nil
	}

	var over, approaching, onTrack []model.BudgetStatus
	for _, status := range statuses {
		switch {
		case status.IsOverBudget:
			over = append(over, status)
		case status.ShouldAlert:
			approaching = append(approaching, status)
		default:
			onTrack = append(onTrack, status)
		}
	}

	data := map[string]any{
		"over_budget": a.statusSummaries(ctx, over),
		"approaching": a.statusSummaries(ctx, approaching),
		"on_track":    a.statusSummaries(ctx, onTrack),
	}

	var text string
	switch {
	case len(over) > 0:
		status := over[0]
		text = fmt.Sprintf("You're over budget on %s: spent %s of %s (%.0f%%).",
			a.budgetLabel(ctx, status.Budget),
			formatAmount(status.Spent), formatAmount(status.Budget.Amount), status.PercentageUsed)
		if len(over) > 1 {
			text += fmt.Sprintf(" %d other budget(s) are over as well.", len(over)-1)
		}
	case len(approaching) > 0:
		status := approaching[0]
		text = fmt.Sprintf("Heads up: your %s budget is at %.0f%% with %d day(s) left in the period.",
			a.budgetLabel(ctx, status.Budget), status.PercentageUsed, status.DaysRemaining)
		if len(approaching) > 1 {
			text += fmt.Sprintf(" %d other budget(s) are getting close too.", len(approaching)-1)
		}
	default:
		shown := onTrack
		if len(shown) > maxOnTrackShown {
			shown = shown[:maxOnTrackShown]
		}
		parts := make([]string, 0, len(shown))
		for _, status := range shown {
			parts = append(parts, fmt.Sprintf("%s %.0f%%", a.budgetLabel(ctx, status.Budget), status.PercentageUsed))
		}
		text = fmt.Sprintf("All %d budget(s) are on track: %s.", len(onTrack), strings.Join(parts, ", "))
	}

	return successResponse(text, data), nil
}

// budgetLabel names a budget by its category, or "overall" for an
// unscoped one.
func (a *Advisor) budgetLabel(ctx context.Context, b model.Budget) string {
	if b.CategoryID == nil {
		return "overall"
	}
	category, err := a.store.GetCategoryByID(ctx, *b.CategoryID)
	if err != nil || category == nil {
		return fmt.Sprintf("category %d", *b.CategoryID)
	}
	return category.Name
}

func (a *Advisor) statusSummaries(ctx context.Context, statuses []model.BudgetStatus) []map[string]any {
	summaries := make([]map[string]any, 0, len(statuses))
	for _, status := range statuses {
		summaries = append(summaries, map[string]any{
			"budget_id":       status.Budget.ID,
			"label":           a.budgetLabel(ctx, status.Budget),
			"period":          string(status.Budget.Period),
			"limit":           status.Budget.Amount,
			"spent":           status.Spent,
			"remaining":       status.Remaining,
			"percentage_used": status.PercentageUsed,
			"days_remaining":  status.DaysRemaining,
		})
	}
	return summaries
}
