package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONArray pulls the first [...] span out of text and decodes it.
// Models wrap their JSON in prose often enough that this is the contract.
func extractJSONArray(text string, out interface{}) error {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON array in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("decode JSON array: %w", err)
	}
	return nil
}

// extractJSONObject pulls the first {...} span out of text and decodes it.
func extractJSONObject(text string, out interface{}) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("decode JSON object: %w", err)
	}
	return nil
}
