// Package services orchestrates writes across the repository and the sync
// queue. Handlers call services; services own validation and side effects.
package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// CategoryService manages the category registry.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

// Create validates and stores a new category. A missing color gets a
// random pastel so every category renders distinctly out of the box.
func (s *CategoryService) Create(ctx context.Context, c core.Category) (*core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Color == "" {
		c.Color = pastelColor()
	}
	return s.storage.CreateCategory(ctx, c)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*core.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *CategoryService) ListActive(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListActiveCategories(ctx)
}

// Update rewrites a category. Deactivating instead of deleting is how
// referenced categories retire.
func (s *CategoryService) Update(ctx context.Context, c core.Category) (*core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Color == "" {
		existing, err := s.storage.GetCategory(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Color = existing.Color
	}
	return s.storage.UpdateCategory(ctx, c)
}

// Delete removes a category; the repository rejects it while transactions
// still reference it.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// pastelColor picks a random hue at fixed high lightness. All three RGB
// channels stay in [170, 255], which keeps dark text readable on top.
func pastelColor() string {
	h := rand.Float64() * 360
	r, g, b := hslToRGB(h, 1.0, 0.83)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - abs(2*l-1)) * s
	x := c * (1 - abs(mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func mod(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	return a
}
