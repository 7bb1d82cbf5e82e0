package dto

import (
	"time"

	"budgetbuddy/internal/models"
)

// EntryRequest carries a create or partial-update payload. The amount
// arrives under "income" on income routes and "amount" on expense routes,
// matching the per-kind wire labels; pointers distinguish absent fields
// from zero values.
type EntryRequest struct {
	Source *string  `json:"source"`
	Income *float64 `json:"income"`
	Amount *float64 `json:"amount"`
}

// AmountFor picks the wire field that carries the amount for this kind.
func (r EntryRequest) AmountFor(kind models.Kind) *float64 {
	if kind == models.KindIncome {
		return r.Income
	}
	return r.Amount
}

// IncomeView serializes an entry with the income wire label.
type IncomeView struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"`
	Income    float64   `json:"income"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpenseView serializes an entry with the expense wire label.
type ExpenseView struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewEntry converts an entry to its kind-specific wire shape.
func ViewEntry(kind models.Kind, e models.Entry) any {
	if kind == models.KindIncome {
		return IncomeView{ID: e.ID, UserID: e.UserID, Source: e.Source, Income: e.Amount, CreatedAt: e.CreatedAt}
	}
	return ExpenseView{ID: e.ID, UserID: e.UserID, Source: e.Source, Amount: e.Amount, CreatedAt: e.CreatedAt}
}

// ViewEntries converts a slice of entries, always yielding a non-nil slice
// so empty ledgers serialize as [] rather than null.
func ViewEntries(kind models.Kind, entries []models.Entry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, ViewEntry(kind, e))
	}
	return out
}

// RecommendationRequest carries the affordability inputs. Pointers detect
// missing fields.
type RecommendationRequest struct {
	Income    *float64 `json:"income"`
	Expenses  *float64 `json:"expenses"`
	ItemPrice *float64 `json:"itemPrice"`
}
