package budget

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestComputeSummary_ScenarioSalaryAndRent(t *testing.T) {
	store := newFakeStore()
	salary := store.addCategory(core.Category{Name: "Salary", IsIncome: true})
	rent := store.addCategory(core.Category{Name: "Rent"})
	october := month(2024, time.October)
	store.setBudget(rent.ID, october, 130000)
	store.setTotals(october, salary.ID, 300000, 0)
	store.setTotals(october, rent.ID, 0, 130000)

	a := NewAggregator(store, store, store)
	rows, err := a.ComputeSummary(context.Background(), october)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	// Sorted by name: Rent before Salary.
	rentRow, salaryRow := rows[0], rows[1]
	if rentRow.Name != "Rent" || salaryRow.Name != "Salary" {
		t.Fatalf("unexpected order: %s, %s", rows[0].Name, rows[1].Name)
	}

	if salaryRow.Income.Cents != 300000 || salaryRow.Spent.Cents != 0 {
		t.Errorf("Salary = income %d spent %d, want 300000/0", salaryRow.Income.Cents, salaryRow.Spent.Cents)
	}
	if rentRow.Limit.Cents != 130000 || rentRow.Spent.Cents != 130000 || rentRow.Remaining.Cents != 0 {
		t.Errorf("Rent = limit %d spent %d remaining %d, want 130000/130000/0",
			rentRow.Limit.Cents, rentRow.Spent.Cents, rentRow.Remaining.Cents)
	}
}

func TestComputeSummary_EmptyMonthYieldsZeroRows(t *testing.T) {
	store := newFakeStore()
	store.addCategory(core.Category{Name: "Rent"})
	store.addCategory(core.Category{Name: "Groceries"})

	a := NewAggregator(store, store, store)
	rows, err := a.ComputeSummary(context.Background(), month(2024, time.November))
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want one per active category", len(rows))
	}
	for _, row := range rows {
		if row.Limit.Cents != 0 || row.Spent.Cents != 0 || row.Income.Cents != 0 || row.Remaining.Cents != 0 {
			t.Errorf("row %s not all-zero: %+v", row.Name, row)
		}
	}
}

func TestComputeSummary_OverspendYieldsNegativeRemaining(t *testing.T) {
	store := newFakeStore()
	food := store.addCategory(core.Category{Name: "Food"})
	october := month(2024, time.October)
	store.setBudget(food.ID, october, 50000)
	store.setTotals(october, food.ID, 0, 61234)

	a := NewAggregator(store, store, store)
	rows, err := a.ComputeSummary(context.Background(), october)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	if rows[0].Remaining.Cents != -11234 {
		t.Errorf("remaining = %d, want -11234 (never clamped)", rows[0].Remaining.Cents)
	}
	if rows[0].Spent.Cents != 61234 {
		t.Errorf("spent = %d, want 61234", rows[0].Spent.Cents)
	}
}

func TestComputeSummary_MixedSignsInOneCategory(t *testing.T) {
	// A category can see both refunds (positive) and purchases (negative)
	// in the same month; the two totals stay separate.
	store := newFakeStore()
	shop := store.addCategory(core.Category{Name: "Shopping"})
	october := month(2024, time.October)
	store.setTotals(october, shop.ID, 2500, 10000)

	a := NewAggregator(store, store, store)
	rows, err := a.ComputeSummary(context.Background(), october)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	if rows[0].Income.Cents != 2500 {
		t.Errorf("income = %d, want 2500", rows[0].Income.Cents)
	}
	if rows[0].Spent.Cents != 10000 {
		t.Errorf("spent = %d, want 10000", rows[0].Spent.Cents)
	}
}

func TestComputeSummary_StableOrdering(t *testing.T) {
	store := newFakeStore()
	// Insert out of name order; case-sensitive sort puts "ZZ" before "aa".
	store.addCategory(core.Category{Name: "aa"})
	store.addCategory(core.Category{Name: "ZZ"})
	store.addCategory(core.Category{Name: "Alpha"})

	a := NewAggregator(store, store, store)
	rows, err := a.ComputeSummary(context.Background(), month(2024, time.October))
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	want := []string{"Alpha", "ZZ", "aa"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Errorf("rows[%d] = %s, want %s", i, rows[i].Name, name)
		}
	}
}

func TestComputeSummary_InactiveCategoriesExcluded(t *testing.T) {
	store := newFakeStore()
	store.addCategory(core.Category{Name: "Active"})
	inactive := store.addCategory(core.Category{Name: "Old"})
	store.mu.Lock()
	for i := range store.categories {
		if store.categories[i].ID == inactive.ID {
			store.categories[i].IsActive = false
		}
	}
	store.mu.Unlock()

	a := NewAggregator(store, store, store)
	rows, err := a.ComputeSummary(context.Background(), month(2024, time.October))
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Active" {
		t.Errorf("expected only the active category, got %d rows", len(rows))
	}
}
