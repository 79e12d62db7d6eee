package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON locates an embedded JSON object in free text by slicing from
// the first '{' to the last '}'. Completion responses often wrap the object
// in prose or code fences.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseRecommendations pulls a "recommendations" string list out of a
// completion response. A response with no parsable list is an error so the
// caller can fall back.
func ParseRecommendations(text string) ([]string, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("response contains no JSON object")
	}
	var payload struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse recommendations: %w", err)
	}
	if len(payload.Recommendations) == 0 {
		return nil, fmt.Errorf("response contains no recommendations")
	}
	return payload.Recommendations, nil
}
