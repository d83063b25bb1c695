package analyzer

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/stylescout/backend/internal/domain"
)

const (
	scoreMarker       = "SCORE:"
	reasonMarker      = "REASON:"
	descriptionMarker = "DESCRIPTION:"
)

var firstIntRegex = regexp.MustCompile(`-?\d+`)

// parseResponse scans a model reply line by line for SCORE, REASON and
// DESCRIPTION markers. The first integer after SCORE wins and is clamped to
// [1, maxScore]. DESCRIPTION may continue across lines until another marker.
// A reply with no score marker degrades to a neutral parse_error_fallback.
func parseResponse(raw string, maxScore int) domain.AnalysisResult {
	result := domain.AnalysisResult{
		Method:      domain.MethodAIAnalysis,
		RawResponse: raw,
	}

	scoreFound := false
	inDescription := false
	var description []string

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 16*1024), 256*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, scoreMarker):
			inDescription = false
			if scoreFound {
				continue
			}
			if m := firstIntRegex.FindString(line[len(scoreMarker):]); m != "" {
				if v, err := strconv.Atoi(m); err == nil {
					result.Score = domain.ClampScore(v, maxScore)
					scoreFound = true
				}
			}
		case strings.HasPrefix(upper, reasonMarker):
			inDescription = false
			if result.Reasoning == "" {
				result.Reasoning = strings.TrimSpace(line[len(reasonMarker):])
			}
		case strings.HasPrefix(upper, descriptionMarker):
			inDescription = true
			if v := strings.TrimSpace(line[len(descriptionMarker):]); v != "" {
				description = append(description, v)
			}
		case inDescription && line != "":
			description = append(description, line)
		}
	}
	result.Description = strings.Join(description, " ")

	if !scoreFound {
		return domain.AnalysisResult{
			Success:     false,
			Score:       domain.NeutralScore(maxScore),
			Reasoning:   "model response carried no score marker",
			Method:      domain.MethodParseErrorFallback,
			Description: result.Description,
			RawResponse: raw,
		}
	}

	result.Success = true
	if result.Reasoning == "" {
		result.Reasoning = "no reasoning provided"
	}
	return result
}
