package advisor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator produces advisory text with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator bound to the given model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks the model for a short purchase recommendation.
func (g *GeminiGenerator) Generate(ctx context.Context, in Inputs) (string, error) {
	prompt := fmt.Sprintf(`You are a financial advisor.
The user has total income %.2f, total expenses %.2f,
a current balance of %.2f, and wants to buy an item worth %.2f.
Give a clear recommendation:
- If they can afford it, say how much will remain after the purchase.
- If they cannot afford it, show current savings and how much more is needed.
- Suggest a simple monthly saving plan to buy it within the next 3-6 months.
Keep it short and friendly.`, in.Income, in.Expenses, in.Balance, in.ItemPrice)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from model")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
