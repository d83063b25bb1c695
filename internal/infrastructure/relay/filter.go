package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/stylescout/backend/internal/domain"
)

const filterSystemPrompt = "You are a wardrobe-matching assistant. You reply with a single JSON object and nothing else."

// ModelFilter implements the AI attribute-filtering capability on top of the
// model runtime. Each call runs in a throwaway text-only session and expects
// a strict JSON reply.
type ModelFilter struct {
	runtime domain.ModelRuntime
}

// NewModelFilter creates a filter relay over the given runtime
func NewModelFilter(runtime domain.ModelRuntime) *ModelFilter {
	return &ModelFilter{runtime: runtime}
}

// FilterItems asks the model which wardrobe items could plausibly pair with
// the product, by attributes alone. Indices in the reply refer to positions
// in the submitted item list.
func (f *ModelFilter) FilterItems(ctx context.Context, product domain.ProductSummary, items []domain.WardrobeItem) (*domain.FilterRelayResponse, error) {
	session, err := f.runtime.CreateSession(ctx, domain.SessionOptions{
		Temperature:  0,
		TopK:         1,
		SystemPrompt: filterSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRelayFailure, err)
	}
	defer session.Destroy()

	reply, err := session.Prompt(ctx, buildFilterPrompt(product, items))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRelayFailure, err)
	}

	response, err := parseFilterReply(reply)
	if err != nil {
		log.Printf("[RELAY] unparseable filter reply: %v", err)
		return nil, err
	}
	return response, nil
}

func buildFilterPrompt(product domain.ProductSummary, items []domain.WardrobeItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product under consideration: %s (category: %s)\n", product.Name, product.Category)
	writeAttributes(&b, product.Attributes)
	b.WriteString("\nWardrobe items:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (category: %s)\n", i, item.Name, item.AIAnalysis.Category)
		writeAttributes(&b, item.AIAnalysis.Attributes)
	}

	b.WriteString("\nKeep only items that could plausibly be worn with the product, judging by category and attributes alone. ")
	b.WriteString("Reply with exactly this JSON shape and nothing else:\n")
	b.WriteString(`{"shortlist": [<surviving item numbers>], "eliminated": {"<item number>": "<one-line reason>"}}`)
	b.WriteString("\n")

	return b.String()
}

func writeAttributes(b *strings.Builder, attributes map[string]string) {
	if len(attributes) == 0 {
		return
	}
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, "   - %s: %s\n", key, attributes[key])
	}
}

// parseFilterReply tolerates the code fences models wrap JSON in
func parseFilterReply(reply string) (*domain.FilterRelayResponse, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var response domain.FilterRelayResponse
	if err := json.Unmarshal([]byte(cleaned), &response); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRelayFailure, err)
	}
	return &response, nil
}
