// Package assist suggests categories for uncategorized transactions using a
// Gemini model. It is an optional convenience: the engine never depends on
// it, and it degrades with a plain error when no API key is configured.
package assist

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/finbook/finbook"
)

// DefaultModel is used when the caller does not pick one.
const DefaultModel = "gemini-2.5-flash"

// Classifier wraps a Gemini client for category suggestions.
type Classifier struct {
	client *genai.Client
	model  string
}

// NewClassifier creates a classifier. The client is configured from the
// environment (GEMINI_API_KEY).
func NewClassifier(ctx context.Context, model string) (*Classifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Classifier{client: client, model: model}, nil
}

// SuggestCategory asks the model to pick the best category for tx from the
// known list. The reply is constrained to one of the given names; anything
// else is reported as an error rather than silently accepted.
func (c *Classifier) SuggestCategory(ctx context.Context, tx finbook.Transaction, categories []string) (string, error) {
	if len(categories) == 0 {
		return "", fmt.Errorf("no categories to choose from")
	}
	prompt := buildPrompt(tx, categories)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate category suggestion: %w", err)
	}
	answer := strings.TrimSpace(resp.Text())
	for _, name := range categories {
		if strings.EqualFold(answer, name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("model answered %q, not a known category", answer)
}

func buildPrompt(tx finbook.Transaction, categories []string) string {
	var b strings.Builder
	b.WriteString("Pick the single best category for this personal-finance transaction.\n")
	b.WriteString("Answer with exactly one category name from the list, nothing else.\n\n")
	fmt.Fprintf(&b, "Categories: %s\n\n", strings.Join(categories, ", "))
	fmt.Fprintf(&b, "Transaction: type=%s amount=%s %s date=%s", tx.Type, tx.Amount, tx.Currency, tx.When())
	if tx.Note != "" {
		fmt.Fprintf(&b, " note=%q", tx.Note)
	}
	return b.String()
}
