package analyzer

import (
	"strings"
	"testing"

	"github.com/stylescout/backend/internal/domain"
)

func TestParseResponse_ScoreClamping(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		maxScore int
		want     int
	}{
		{"in range", "SCORE: 7", 10, 7},
		{"above max", "SCORE: 15", 10, 10},
		{"zero", "SCORE: 0", 10, 1},
		{"negative", "SCORE: -3", 10, 1},
		{"above small max", "SCORE: 9", 3, 3},
		{"trailing words", "SCORE: 4 out of 10", 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseResponse(tt.raw, tt.maxScore)
			if !result.Success {
				t.Fatalf("Success = false, want true (%+v)", result)
			}
			if result.Score != tt.want {
				t.Errorf("Score = %d, want %d", result.Score, tt.want)
			}
			if result.Method != domain.MethodAIAnalysis {
				t.Errorf("Method = %q, want ai_analysis", result.Method)
			}
		})
	}
}

func TestParseResponse_FullReply(t *testing.T) {
	raw := "SCORE: 8\nREASON: matches the profile's earth tones\nDESCRIPTION: A loose beige linen\nshirt with wooden buttons."

	result := parseResponse(raw, 10)

	if result.Score != 8 {
		t.Errorf("Score = %d, want 8", result.Score)
	}
	if result.Reasoning != "matches the profile's earth tones" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
	// DESCRIPTION continues across lines until another marker
	if result.Description != "A loose beige linen shirt with wooden buttons." {
		t.Errorf("Description = %q", result.Description)
	}
	if result.RawResponse != raw {
		t.Error("RawResponse not preserved")
	}
}

func TestParseResponse_DescriptionStopsAtMarker(t *testing.T) {
	raw := "DESCRIPTION: A red dress\nwith white dots\nSCORE: 6\nREASON: fine"

	result := parseResponse(raw, 10)

	if result.Description != "A red dress with white dots" {
		t.Errorf("Description = %q, want marker-terminated text", result.Description)
	}
	if result.Score != 6 {
		t.Errorf("Score = %d, want 6", result.Score)
	}
}

func TestParseResponse_FirstScoreWins(t *testing.T) {
	result := parseResponse("SCORE: 3\nSCORE: 9", 10)
	if result.Score != 3 {
		t.Errorf("Score = %d, want 3 (first marker wins)", result.Score)
	}
}

func TestParseResponse_CaseInsensitiveMarkers(t *testing.T) {
	result := parseResponse("score: 4\nreason: close enough", 10)
	if !result.Success || result.Score != 4 {
		t.Errorf("result = %+v, want success with score 4", result)
	}
	if result.Reasoning != "close enough" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
}

func TestParseResponse_MissingScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		maxScore int
		wantNeutral int
	}{
		{"empty reply", "", 10, 5},
		{"prose only", "This dress looks lovely and would suit you well.", 10, 5},
		{"marker without integer", "SCORE: excellent", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseResponse(tt.raw, tt.maxScore)
			if result.Success {
				t.Error("Success = true, want false")
			}
			if result.Score != tt.wantNeutral {
				t.Errorf("Score = %d, want neutral %d", result.Score, tt.wantNeutral)
			}
			if result.Method != domain.MethodParseErrorFallback {
				t.Errorf("Method = %q, want parse_error_fallback", result.Method)
			}
			if result.Reasoning == "" {
				t.Error("Reasoning empty, want generic fallback text")
			}
		})
	}
}

func TestParseResponse_ReasonDefaultsWhenAbsent(t *testing.T) {
	result := parseResponse("SCORE: 5", 10)
	if !result.Success {
		t.Fatal("Success = false, want true")
	}
	if !strings.Contains(result.Reasoning, "no reasoning") {
		t.Errorf("Reasoning = %q, want generic placeholder", result.Reasoning)
	}
}
