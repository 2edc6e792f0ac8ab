package budget

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

// DefaultMaxLookbackMonths bounds the backward search for a rollover
// source. A budget row older than this is ignored and the limit falls back
// to zero instead of scanning arbitrarily far into the past.
const DefaultMaxLookbackMonths = 24

// Resolver guarantees that every active category has a MonthlyBudget row
// for a requested month, synthesizing missing rows from history (rollover).
// Resolution is lazy: it runs on month views, never from a scheduler.
type Resolver struct {
	registry    CategoryRegistry
	budgets     BudgetStore
	maxLookback int
}

func NewResolver(registry CategoryRegistry, budgets BudgetStore, maxLookbackMonths int) *Resolver {
	if maxLookbackMonths <= 0 {
		maxLookbackMonths = DefaultMaxLookbackMonths
	}
	return &Resolver{
		registry:    registry,
		budgets:     budgets,
		maxLookback: maxLookbackMonths,
	}
}

// ResolveMonth creates budget rows for every active category that lacks one
// in the given month. Each missing row copies the limit of the category's
// nearest earlier month within the lookback window, or starts at zero.
//
// The call is idempotent and safe under concurrency: existing rows are
// never touched, and a row created by a concurrent resolution of the same
// month is absorbed by the store's uniqueness constraint.
func (r *Resolver) ResolveMonth(ctx context.Context, month core.Month) error {
	if err := month.Validate(); err != nil {
		return err
	}

	categories, err := r.registry.ListActiveCategories(ctx)
	if err != nil {
		return fmt.Errorf("list active categories: %w", err)
	}

	existing, err := r.budgets.GetBudgetsForMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("get budgets for month %s: %w", month, err)
	}
	have := make(map[int64]bool, len(existing))
	for _, b := range existing {
		have[b.CategoryID] = true
	}

	floor := month.AddMonths(-r.maxLookback)

	for _, cat := range categories {
		if have[cat.ID] {
			continue
		}

		// Rollover is evaluated per category independently: a month may end
		// up partially copied and partially fresh at zero.
		limit := core.Money{}
		prev, err := r.budgets.GetLatestBudgetBefore(ctx, cat.ID, month)
		if err != nil {
			return fmt.Errorf("find rollover source for category %d: %w", cat.ID, err)
		}
		if prev != nil && !prev.Month.Before(floor) {
			limit = prev.Limit
		} else if prev != nil {
			slog.DebugContext(ctx, "Rollover source beyond lookback window, starting at zero",
				"category_id", cat.ID,
				"source_month", prev.Month.String(),
				"max_lookback_months", r.maxLookback)
		}

		created, err := r.budgets.InsertBudgetIfAbsent(ctx, cat.ID, month, limit)
		if err != nil {
			return fmt.Errorf("insert budget for category %d month %s: %w", cat.ID, month, err)
		}
		if !created {
			// A concurrent resolution of the same month won the insert.
			slog.DebugContext(ctx, "Budget row already present, skipping",
				"category_id", cat.ID,
				"month", month.String())
			continue
		}

		slog.InfoContext(ctx, "Budget row created by rollover",
			"category_id", cat.ID,
			"category", cat.Name,
			"month", month.String(),
			"limit_cents", limit.Cents)
	}

	return nil
}
