package analyzer

import "github.com/stylescout/backend/internal/domain"

// Options carry the per-call inputs a strategy may consume. Prompt builders
// only ever see text (alt, context, options); the image asset travels as a
// separate multimodal part.
type Options struct {
	Profile     *domain.StyleProfile
	Query       string
	PriorLabels []string
}

// Strategy is the one axis that differs between scoring variants: what
// question is asked, how results are keyed, and the score range. Everything
// else (round trip, batching, parsing, caching) lives in the Engine.
type Strategy struct {
	Name     string
	MaxScore int

	// RequireImage makes a missing image asset a hard failure instead of
	// degrading to text-only analysis
	RequireImage bool

	BuildPrompt func(image domain.ImageCandidate, opts Options) string
	CacheKey    func(image domain.ImageCandidate, opts Options) string
}
