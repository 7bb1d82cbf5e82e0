// Package advisor computes purchase-affordability recommendations. It
// prefers a human-readable advisory from an external text generator and
// falls back to deterministic rules when that call fails.
package advisor

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"
)

// Inputs are the figures handed to the external generator.
type Inputs struct {
	Income    float64
	Expenses  float64
	Balance   float64
	ItemPrice float64
}

// Generator produces a free-text recommendation from the inputs. Any error
// it returns is treated as "unavailable" and never propagates to callers.
type Generator interface {
	Generate(ctx context.Context, in Inputs) (string, error)
}

// PlanOption is one horizon of a savings plan.
type PlanOption struct {
	Months       int     `json:"months"`
	SavePerMonth float64 `json:"savePerMonth"`
}

// Recommendation is the affordability decision returned to callers.
// BudgetPlan is only present on the unaffordable fallback branch; the
// generator's free text never carries a structured plan.
type Recommendation struct {
	Recommendation string       `json:"recommendation"`
	Balance        float64      `json:"balance"`
	Price          float64      `json:"price"`
	BudgetPlan     []PlanOption `json:"budgetPlan"`
}

// Engine wraps an optional generator with a call timeout.
type Engine struct {
	gen     Generator
	timeout time.Duration
}

// New creates an engine. A nil generator means the deterministic rules
// always apply.
func New(gen Generator, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{gen: gen, timeout: timeout}
}

// Recommend computes balance = income - expenses (never clamped) and
// returns an advisory. The generator call is bounded by the engine timeout;
// on failure the fallback branch runs and the caller still gets a 200-class
// answer.
func (e *Engine) Recommend(ctx context.Context, income, expenses, itemPrice float64) Recommendation {
	balance := income - expenses
	rec := Recommendation{Balance: balance, Price: itemPrice}

	if e.gen != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		text, err := e.gen.Generate(cctx, Inputs{
			Income:    income,
			Expenses:  expenses,
			Balance:   balance,
			ItemPrice: itemPrice,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			rec.Recommendation = text
			return rec
		}
		log.Printf("advisor: generator unavailable, using fallback rules: %v", err)
	}

	rec.Recommendation, rec.BudgetPlan = Fallback(balance, itemPrice)
	return rec
}

// Fallback applies the deterministic affordability rules. Monetary values
// are rounded to two decimals only here, at the output boundary.
func Fallback(balance, price float64) (string, []PlanOption) {
	switch {
	case balance <= 0:
		return fmt.Sprintf("You have no savings right now. Current balance: %.2f. Better to save before buying.", balance), nil
	case price <= balance:
		remaining := balance - price
		return fmt.Sprintf("You can afford this purchase. Spend %.2f and you'll have %.2f remaining in savings.", price, remaining), nil
	default:
		needed := price - balance
		months := []int{3, 6, 12}
		plan := make([]PlanOption, 0, len(months))
		for _, m := range months {
			plan = append(plan, PlanOption{Months: m, SavePerMonth: round2(needed / float64(m))})
		}
		msg := fmt.Sprintf("Not affordable right now. Current savings: %.2f. You need %.2f more to buy this item. Here's a plan to save over the coming months:", balance, needed)
		return msg, plan
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
