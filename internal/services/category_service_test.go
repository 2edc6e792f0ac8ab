package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"bilancio/internal/core"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestCategoryService_CreateAssignsPastelColor(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewCategoryService(repo)

	created, err := svc.Create(context.Background(), core.Category{Name: "  Rent  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Rent" {
		t.Errorf("name = %q, want trimmed", created.Name)
	}
	if !hexColor.MatchString(created.Color) {
		t.Errorf("color = %q, want #RRGGBB", created.Color)
	}

	// Explicit colors pass through untouched.
	custom, err := svc.Create(context.Background(), core.Category{Name: "Food", Color: "#FADADD"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if custom.Color != "#FADADD" {
		t.Errorf("color = %q, want #FADADD", custom.Color)
	}
}

func TestCategoryService_CreateValidation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewCategoryService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, core.Category{Name: "   "}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name error = %v, want ErrEmptyName", err)
	}

	if _, err := svc.Create(ctx, core.Category{Name: "Rent"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, core.Category{Name: "Rent"}); !errors.Is(err, core.ErrDuplicateName) {
		t.Errorf("duplicate error = %v, want ErrDuplicateName", err)
	}
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewCategoryService(repo)
	ctx := context.Background()

	food, err := svc.Create(ctx, core.Category{Name: "Food"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := NewTransactionService(repo, nil).Create(ctx, core.Transaction{
		CategoryID: food.ID,
		Date:       time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC),
		Amount:     core.Money{Cents: 1500},
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := svc.Delete(ctx, food.ID); !errors.Is(err, core.ErrCategoryInUse) {
		t.Errorf("delete in-use category error = %v, want ErrCategoryInUse", err)
	}

	// Deactivation is the supported way to retire it.
	food.IsActive = false
	if _, err := svc.Update(ctx, *food); err != nil {
		t.Fatalf("Update: %v", err)
	}
	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active categories = %d, want 0", len(active))
	}
}

func TestPastelColorStaysLight(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := pastelColor()
		if !hexColor.MatchString(c) {
			t.Fatalf("color %q not #RRGGBB", c)
		}
		for j := 1; j < 7; j += 2 {
			channel, err := strconv.ParseUint(c[j:j+2], 16, 8)
			if err != nil {
				t.Fatalf("parse %q: %v", c, err)
			}
			if channel < 150 {
				t.Errorf("channel %s of %s too dark for a pastel", c[j:j+2], c)
			}
		}
	}
}
