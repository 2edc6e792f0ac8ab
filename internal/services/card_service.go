package services

import (
	"context"
	"fmt"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// CardService manages payment-method references.
type CardService struct {
	storage *storage.SQLiteRepository
}

func NewCardService(storage *storage.SQLiteRepository) *CardService {
	return &CardService{storage: storage}
}

func (s *CardService) Create(ctx context.Context, c core.Card) (*core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.storage.CreateCard(ctx, c)
}

func (s *CardService) Get(ctx context.Context, id int64) (*core.Card, error) {
	return s.storage.GetCard(ctx, id)
}

func (s *CardService) List(ctx context.Context) ([]core.Card, error) {
	return s.storage.ListCards(ctx)
}

func (s *CardService) Update(ctx context.Context, c core.Card) (*core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.storage.UpdateCard(ctx, c)
}

func (s *CardService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	return nil
}
