package advisor_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/advisor"
)

type stubGenerator struct {
	text string
	err  error
	seen advisor.Inputs
}

func (s *stubGenerator) Generate(ctx context.Context, in advisor.Inputs) (string, error) {
	s.seen = in
	return s.text, s.err
}

func TestRecommendFallbackScenarios(t *testing.T) {
	engine := advisor.New(nil, time.Second)

	tests := []struct {
		name        string
		income      float64
		expenses    float64
		price       float64
		wantBalance float64
		wantPlan    bool
	}{
		{"affordable with remainder", 1000, 400, 500, 600, false},
		{"negative balance, no plan", 500, 600, 200, -100, false},
		{"unaffordable yields plan", 1000, 0, 5000, 1000, true},
		{"zero balance counts as no savings", 300, 300, 50, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := engine.Recommend(context.Background(), tc.income, tc.expenses, tc.price)
			assert.Equal(t, tc.wantBalance, rec.Balance)
			assert.Equal(t, tc.price, rec.Price)
			assert.NotEmpty(t, rec.Recommendation)
			if tc.wantPlan {
				assert.NotEmpty(t, rec.BudgetPlan)
			} else {
				assert.Empty(t, rec.BudgetPlan)
			}
		})
	}
}

func TestRecommendBudgetPlanValues(t *testing.T) {
	engine := advisor.New(nil, time.Second)

	// income=1000, expenses=0, price=5000 -> needed=4000
	rec := engine.Recommend(context.Background(), 1000, 0, 5000)
	require.Len(t, rec.BudgetPlan, 3)

	assert.Equal(t, advisor.PlanOption{Months: 3, SavePerMonth: 1333.33}, rec.BudgetPlan[0])
	assert.Equal(t, advisor.PlanOption{Months: 6, SavePerMonth: 666.67}, rec.BudgetPlan[1])
	assert.Equal(t, advisor.PlanOption{Months: 12, SavePerMonth: 333.33}, rec.BudgetPlan[2])
}

func TestFallbackPlanMonotonicityAndReconstruction(t *testing.T) {
	prices := []struct{ balance, price float64 }{
		{100, 101},
		{0.5, 10000},
		{999.99, 1000.01},
		{250, 4000},
	}
	for _, p := range prices {
		_, plan := advisor.Fallback(p.balance, p.price)
		require.Len(t, plan, 3)
		needed := p.price - p.balance

		for i := 1; i < len(plan); i++ {
			assert.GreaterOrEqual(t, plan[i-1].SavePerMonth, plan[i].SavePerMonth,
				"longer horizons must not require more per month")
		}
		for _, opt := range plan {
			reconstructed := opt.SavePerMonth * float64(opt.Months)
			assert.InDelta(t, needed, reconstructed, 0.01*float64(opt.Months),
				"plan for %d months should reconstruct the needed amount", opt.Months)
		}
	}
}

func TestFallbackRoundsToTwoDecimals(t *testing.T) {
	_, plan := advisor.Fallback(0.01, 100)
	for _, opt := range plan {
		scaled := opt.SavePerMonth * 100
		assert.InDelta(t, math.Round(scaled), scaled, 1e-9)
	}
}

func TestRecommendUsesGeneratorText(t *testing.T) {
	gen := &stubGenerator{text: "Looks affordable, go for it."}
	engine := advisor.New(gen, time.Second)

	rec := engine.Recommend(context.Background(), 1000, 400, 500)

	assert.Equal(t, "Looks affordable, go for it.", rec.Recommendation)
	assert.Empty(t, rec.BudgetPlan, "generator responses never carry a structured plan")
	assert.Equal(t, 600.0, gen.seen.Balance)
	assert.Equal(t, 500.0, gen.seen.ItemPrice)
}

func TestRecommendGeneratorFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  advisor.Generator
	}{
		{"error", &stubGenerator{err: errors.New("quota exceeded")}},
		{"blank response", &stubGenerator{text: "   "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := advisor.New(tc.gen, time.Second)
			rec := engine.Recommend(context.Background(), 1000, 0, 5000)

			assert.NotEmpty(t, rec.Recommendation)
			assert.Len(t, rec.BudgetPlan, 3, "fallback branch must produce the plan")
		})
	}
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, in advisor.Inputs) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(5 * time.Second):
		return "too late", nil
	}
}

func TestRecommendGeneratorTimeoutFallsBack(t *testing.T) {
	engine := advisor.New(slowGenerator{}, 10*time.Millisecond)

	start := time.Now()
	rec := engine.Recommend(context.Background(), 1000, 0, 5000)

	assert.Less(t, time.Since(start), time.Second, "caller must not block past the bound")
	assert.Len(t, rec.BudgetPlan, 3)
}

func TestBalanceNeverClamped(t *testing.T) {
	engine := advisor.New(nil, time.Second)
	rec := engine.Recommend(context.Background(), 0, 750.25, 10)
	assert.Equal(t, -750.25, rec.Balance)
}
