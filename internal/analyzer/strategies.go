package analyzer

import (
	"fmt"
	"strings"

	"github.com/stylescout/backend/internal/domain"
)

const (
	// StyleMaxScore is the 1-10 range for style-profile compatibility
	StyleMaxScore = 10

	// PromptMaxScore is the 1-3 range for free-text relevance:
	// 1 no match, 2 partial, 3 strong
	PromptMaxScore = 3
)

// StyleStrategy scores how well an item fits the user's style profile.
// The profile is a single global context, so the cache key derives from the
// image source only; a profile change requires a full cache clear.
func StyleStrategy() Strategy {
	return Strategy{
		Name:        "style",
		MaxScore:    StyleMaxScore,
		BuildPrompt: buildStylePrompt,
		CacheKey: func(image domain.ImageCandidate, _ Options) string {
			return "style:" + image.SourceURL
		},
	}
}

// PromptStrategy rates an item's relevance to a free-text search phrase
func PromptStrategy() Strategy {
	return Strategy{
		Name:        "prompt",
		MaxScore:    PromptMaxScore,
		BuildPrompt: buildPromptRankingPrompt,
		CacheKey: func(image domain.ImageCandidate, opts Options) string {
			return "prompt:" + normalizeQuery(opts.Query) + ":" + image.SourceURL
		},
	}
}

func buildStylePrompt(image domain.ImageCandidate, opts Options) string {
	var b strings.Builder

	b.WriteString("Rate how well the clothing item in the image fits this shopper's personal style profile, from 1 (clashes badly) to 10 (perfect fit).\n\n")

	if p := opts.Profile; !p.IsEmpty() {
		b.WriteString("Style profile:\n")
		writeProfileLine(&b, "Best colors", p.BestColors)
		writeProfileLine(&b, "Colors to avoid", p.AvoidColors)
		writeProfileLine(&b, "Style categories", p.StyleCategories)
		writeProfileLine(&b, "Recommended patterns", p.RecommendedPatterns)
		writeProfileLine(&b, "Patterns to avoid", p.AvoidPatterns)
		writeProfileLine(&b, "Aesthetic keywords", p.AestheticKeywords)
		b.WriteString("\n")
	}

	writeImageText(&b, image)

	b.WriteString("\nRespond in exactly this format:\n")
	fmt.Fprintf(&b, "%s <1-%d>\n", scoreMarker, StyleMaxScore)
	b.WriteString(reasonMarker + " <one short sentence>\n")
	b.WriteString(descriptionMarker + " <what the item looks like>\n")

	return b.String()
}

func buildPromptRankingPrompt(image domain.ImageCandidate, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The shopper is searching for: %q\n\n", strings.TrimSpace(opts.Query))
	b.WriteString("Rate how well the item in the image matches that search:\n")
	b.WriteString("1 = no match (wrong item type or clearly wrong attributes)\n")
	b.WriteString("2 = partial match (right item type, some attributes off)\n")
	b.WriteString("3 = strong match (item type and key attributes line up)\n\n")

	// worked examples anchor the model's calibration
	b.WriteString("Examples:\n")
	b.WriteString("Search \"red running shoes\", item \"Red mesh running sneakers\" -> SCORE: 3\n")
	b.WriteString("Search \"red running shoes\", item \"White leather sneakers\" -> SCORE: 2\n")
	b.WriteString("Search \"red running shoes\", item \"Blue denim jacket\" -> SCORE: 1\n\n")

	writeImageText(&b, image)
	if len(opts.PriorLabels) > 0 {
		fmt.Fprintf(&b, "Known classification labels: %s\n", strings.Join(opts.PriorLabels, ", "))
	}

	b.WriteString("\nBe decisive. Respond in exactly this format:\n")
	fmt.Fprintf(&b, "%s <1-%d>\n", scoreMarker, PromptMaxScore)
	b.WriteString(reasonMarker + " <one short sentence>\n")

	return b.String()
}

func writeImageText(b *strings.Builder, image domain.ImageCandidate) {
	if image.AltText != "" {
		fmt.Fprintf(b, "Image alt text: %s\n", image.AltText)
	}
	if image.Context != "" {
		fmt.Fprintf(b, "Nearby page text: %s\n", image.Context)
	}
}

func writeProfileLine(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
