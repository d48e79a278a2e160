package model

import "time"

// BudgetPeriod is the cycle a budget's limit applies to.
type BudgetPeriod string

// Supported budget periods. Anything else is treated as monthly when the
// period window is computed.
const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// DefaultAlertThreshold is the fraction of a budget at which an alert fires
// when no explicit threshold was configured.
const DefaultAlertThreshold = 0.8

// Budget is a spending limit for a user, optionally scoped to one category.
// A nil CategoryID means the budget covers all spending.
type Budget struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	CategoryID     *int64       `json:"category_id,omitempty"`
	Amount         float64      `json:"amount"`
	Period         BudgetPeriod `json:"period"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	IsActive       bool         `json:"is_active"`
	AlertThreshold float64      `json:"alert_threshold"`
	CreatedAt      time.Time    `json:"created_at"`
	DeletedAt      *time.Time   `json:"deleted_at,omitempty"`
}

// BudgetStatus is the derived state of a budget for its current period
// window. It is recomputed on every request and never cached.
type BudgetStatus struct {
	Budget         Budget    `json:"budget"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	Spent          float64   `json:"spent"`
	Remaining      float64   `json:"remaining"`
	PercentageUsed float64   `json:"percentage_used"`
	IsOverBudget   bool      `json:"is_over_budget"`
	ShouldAlert    bool      `json:"should_alert"`
	DaysRemaining  int       `json:"days_remaining"`
}
