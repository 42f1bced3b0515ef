package engine

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// jsonScoreBlock matches a fenced ```json {"score": N} ...``` block, the
// structured-output alternative §9 "Score parsing robustness" prefers
// over the regex fallback.
var jsonScoreBlock = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// legacyScorePattern is the regex-based fallback documented in §4.4.3:
// `(?:Confidence )?Score:\s*(\d+)`, case-insensitive.
var legacyScorePattern = regexp.MustCompile(`(?i)(?:Confidence )?Score:\s*(\d+)`)

// parseConfidenceScore extracts the DxO gatekeeper's confidence score
// from its critique text. It tries the structured JSON block first,
// then falls back to the legacy "Score: N" regex, defaulting to 0 if
// neither is present (§4.4.3 Phase D, §9 design note).
func parseConfidenceScore(text string) int {
	if m := jsonScoreBlock.FindStringSubmatch(text); m != nil {
		var payload struct {
			Score int `json:"score"`
		}
		if err := json.Unmarshal([]byte(m[1]), &payload); err == nil {
			return payload.Score
		}
	}

	if m := legacyScorePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}

	return 0
}
