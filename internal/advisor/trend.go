package advisor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spendsense/spendsense/internal/model"
)

const (
	defaultTrendMonths    = 6
	defaultForecastSteps  = 3
	minForecastHistory    = 3
	forecastRecentMonths  = 3
	stableTrendFraction   = 0.05
	minForecastConfidence = 50.0
	maxForecastConfidence = 95.0
)

// spendingTrend reports per-month totals over the trailing window, oldest
// first. The month count comes from the filters, defaulting to six.
func (a *Advisor) spendingTrend(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	months := defaultTrendMonths
	if n, ok := intFilter(parsed.Filters, "trend_months"); ok && n > 0 {
		months = n
	}

	now := a.now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := currentMonth.AddDate(0, -(months - 1), 0)
	end := currentMonth.AddDate(0, 1, 0)

	series, err := a.store.MonthlySeries(ctx, userID, start, end)
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("monthly series: %w", err)
	}
	if len(series) == 0 {
		return failureResponse(fmt.Sprintf("There is no spending data in the last %d months to build a trend from.", months)), nil
	}

	points := make([]map[string]any, 0, len(series))
	for _, point := range series {
		points = append(points, map[string]any{
			"year":  point.Year,
			"month": point.Month,
			"total": point.Total,
		})
	}

	first := series[0]
	last := series[len(series)-1]
	text := fmt.Sprintf("Over the last %d months your spending went from %s in %s to %s in %s.",
		months,
		formatAmount(first.Total), monthLabel(first.Month, first.Year),
		formatAmount(last.Total), monthLabel(last.Month, last.Year))

	data := map[string]any{
		"trend":  points,
		"months": months,
	}

	return successResponse(text, data), nil
}

// forecast projects spending forward using a damped linear trend. The trend
// is the gap between the recent (up to three months) average and the older
// average; each projection step multiplies the trend's contribution by
// 1/(1+step*0.1) so the forecast regresses toward the recent baseline
// instead of extrapolating forever.
func (a *Advisor) forecast(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error) {
	now := a.now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := currentMonth.AddDate(0, -12, 0)

	series, err := a.store.MonthlySeries(ctx, userID, start, currentMonth)
	if err != nil {
		return model.AIResponse{}, fmt.Errorf("monthly series: %w", err)
	}
	if len(series) < minForecastHistory {
		return failureResponse(fmt.Sprintf(
			"I need at least %d months of history to forecast; you have %d.",
			minForecastHistory, len(series))), nil
	}

	totals := make([]float64, len(series))
	for i, point := range series {
		totals[i] = point.Total
	}

	periods := len(totals)
	recentStart := periods - forecastRecentMonths
	if recentStart < 0 {
		recentStart = 0
	}
	recent := totals[recentStart:]
	older := totals[:recentStart]

	recentAvg := mean(recent)
	olderAvg := recentAvg
	if len(older) > 0 {
		olderAvg = mean(older)
	}

	divisor := float64(periods - forecastRecentMonths)
	if divisor < 1 {
		divisor = 1
	}
	trend := (recentAvg - olderAvg) / divisor

	steps := defaultForecastSteps
	if n, ok := intFilter(parsed.Filters, "forecast_periods"); ok && n > 0 {
		steps = n
	}

	forecasts := make([]map[string]any, 0, steps)
	for step := 1; step <= steps; step++ {
		damping := 1.0 / (1.0 + float64(step)*0.1)
		amount := recentAvg + trend*float64(step)*damping
		if amount < 0 {
			amount = 0
		}
		target := currentMonth.AddDate(0, step-1, 0)
		forecasts = append(forecasts, map[string]any{
			"year":   target.Year(),
			"month":  int(target.Month()),
			"amount": amount,
		})
	}

	overallAvg := mean(totals)
	direction := "stable"
	if math.Abs(trend) >= stableTrendFraction*overallAvg && trend != 0 {
		if trend > 0 {
			direction = "increasing"
		} else {
			direction = "decreasing"
		}
	}

	confidence := minForecastConfidence
	if overallAvg > 0 {
		spread := sampleStdDev(recent)
		confidence = 100 - (spread/overallAvg)*50
		if confidence < minForecastConfidence {
			confidence = minForecastConfidence
		}
		if confidence > maxForecastConfidence {
			confidence = maxForecastConfidence
		}
	}

	next := forecasts[0]["amount"].(float64)
	text := fmt.Sprintf("Based on %d months of history your spending looks %s; the coming month should land around %s.",
		periods, direction, formatAmount(next))

	data := map[string]any{
		"forecast":        forecasts,
		"trend_direction": direction,
		"monthly_trend":   trend,
		"recent_average":  recentAvg,
	}

	resp := successResponse(text, data)
	normalized := confidence / 100
	resp.Confidence = &normalized
	return resp, nil
}

// mean returns the arithmetic mean, zero for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation, zero when there are
// fewer than two values.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	var sum float64
	for _, v := range values {
		diff := v - avg
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
