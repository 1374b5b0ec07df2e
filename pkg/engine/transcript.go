package engine

import (
	"encoding/json"
	"os"
	"strings"
)

// ReadLastOutput extracts the most recent turn's assistant text from a
// transcript file. The host's transcript is newline-delimited JSON, one
// record per turn; each record's text lives at one of a few known key
// paths depending on the host's message shape. A missing or empty
// transcript yields an empty string (and the Completion/Repetition
// detectors treat that as "empty", never fatal).
func ReadLastOutput(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if text, ok := extractText(line); ok {
			return text, nil
		}
		return line, nil
	}
	return "", nil
}

func extractText(line string) (string, bool) {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return "", false
	}

	if text, ok := record["text"].(string); ok {
		return text, true
	}
	if content, ok := record["content"].(string); ok {
		return content, true
	}
	if msg, ok := record["message"].(map[string]any); ok {
		if blocks, ok := msg["content"].([]any); ok {
			var b strings.Builder
			for _, block := range blocks {
				m, ok := block.(map[string]any)
				if !ok {
					continue
				}
				if t, ok := m["text"].(string); ok {
					b.WriteString(t)
				}
			}
			if b.Len() > 0 {
				return b.String(), true
			}
		}
	}
	return "", false
}
