// Package ledger validates and applies income/expense mutations and
// computes authoritative totals.
package ledger

import (
	"context"
	"errors"
	"math"
	"strings"

	"budgetbuddy/internal/models"
	"budgetbuddy/internal/storage"
)

var (
	// ErrSourceRequired indicates a missing or blank source label.
	ErrSourceRequired = errors.New("source is required")
	// ErrInvalidAmount indicates a negative, NaN, or infinite amount.
	ErrInvalidAmount = errors.New("amount must be a non-negative number")
	// ErrNothingToUpdate indicates an update with no mutable fields.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Service applies ledger operations scoped to a single owner. Ownership is
// enforced by the store: an entry id belonging to another user behaves
// exactly like a missing id.
type Service struct {
	store storage.LedgerStore
}

// NewService creates a ledger service over the given store.
func NewService(store storage.LedgerStore) *Service {
	return &Service{store: store}
}

// Add validates and inserts a new entry, returning it with its
// server-assigned id and timestamp.
func (s *Service) Add(ctx context.Context, kind models.Kind, userID int64, source string, amount float64) (models.Entry, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return models.Entry{}, ErrSourceRequired
	}
	if !validAmount(amount) {
		return models.Entry{}, ErrInvalidAmount
	}
	return s.store.InsertEntry(ctx, kind, userID, source, amount)
}

// List returns the user's entries newest-first together with a freshly
// computed total. The cached user aggregate is never consulted.
func (s *Service) List(ctx context.Context, kind models.Kind, userID int64) ([]models.Entry, float64, error) {
	entries, err := s.store.ListEntries(ctx, kind, userID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.SumEntries(ctx, kind, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Update applies the provided fields to the entry matched by (id, userID).
// A blank source is treated as not provided. Zero matched rows is reported
// as storage.ErrNotFound.
func (s *Service) Update(ctx context.Context, kind models.Kind, userID, id int64, source *string, amount *float64) error {
	if source != nil {
		trimmed := strings.TrimSpace(*source)
		if trimmed == "" {
			source = nil
		} else {
			source = &trimmed
		}
	}
	if amount != nil && !validAmount(*amount) {
		return ErrInvalidAmount
	}
	if source == nil && amount == nil {
		return ErrNothingToUpdate
	}
	return s.store.UpdateEntry(ctx, kind, userID, id, source, amount)
}

// Delete removes the entry matched by (id, userID).
func (s *Service) Delete(ctx context.Context, kind models.Kind, userID, id int64) error {
	return s.store.DeleteEntry(ctx, kind, userID, id)
}

// Summary returns both totals, each computed as a fresh sum across the
// user's entries.
func (s *Service) Summary(ctx context.Context, userID int64) (models.Summary, error) {
	income, err := s.store.SumEntries(ctx, models.KindIncome, userID)
	if err != nil {
		return models.Summary{}, err
	}
	expenses, err := s.store.SumEntries(ctx, models.KindExpense, userID)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summary{TotalIncome: income, TotalExpenses: expenses}, nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
