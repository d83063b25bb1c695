package domain

import "time"

// AnalysisMethod tags how an AnalysisResult was produced, so telemetry can
// tell model-unavailable apart from model-misbehaving.
type AnalysisMethod string

const (
	MethodAIAnalysis         AnalysisMethod = "ai_analysis"
	MethodFallback           AnalysisMethod = "fallback"
	MethodErrorFallback      AnalysisMethod = "error_fallback"
	MethodParseErrorFallback AnalysisMethod = "parse_error_fallback"
)

// AnalysisResult is the outcome of scoring one image. Score is always present
// and clamped to [1, maxScore] for the owning strategy; Success=false still
// carries a neutral score so consumers never branch on absence.
type AnalysisResult struct {
	Success     bool           `json:"success"`
	Score       int            `json:"score"`
	Reasoning   string         `json:"reasoning"`
	Method      AnalysisMethod `json:"method"`
	Description string         `json:"description,omitempty"`
	RawResponse string         `json:"rawResponse,omitempty"`
	CachedAt    time.Time      `json:"cachedAt,omitempty"`
}

// NeutralScore returns the fallback score for a strategy: ceil(maxScore/2)
func NeutralScore(maxScore int) int {
	if maxScore < 1 {
		return 1
	}
	return (maxScore + 1) / 2
}

// ClampScore forces a parsed score into [1, maxScore]
func ClampScore(score, maxScore int) int {
	if score < 1 {
		return 1
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// StyleProfile holds the user's style preferences. Owned by the user's
// account and read-only to the scoring pipeline.
type StyleProfile struct {
	BestColors          []string `json:"bestColors" firestore:"bestColors"`
	AvoidColors         []string `json:"avoidColors" firestore:"avoidColors"`
	StyleCategories     []string `json:"styleCategories" firestore:"styleCategories"`
	RecommendedPatterns []string `json:"recommendedPatterns" firestore:"recommendedPatterns"`
	AvoidPatterns       []string `json:"avoidPatterns" firestore:"avoidPatterns"`
	AestheticKeywords   []string `json:"aestheticKeywords" firestore:"aestheticKeywords"`
}

// IsEmpty reports whether the profile carries no usable preferences
func (p *StyleProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.BestColors) == 0 && len(p.AvoidColors) == 0 &&
		len(p.StyleCategories) == 0 && len(p.RecommendedPatterns) == 0 &&
		len(p.AvoidPatterns) == 0 && len(p.AestheticKeywords) == 0
}
