// File path: internal/conversation/extract.go
package conversation

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// suggestionsPattern matches the single-line {"suggestions": [...]} object the
// model appends after the message body. The array part must stay on one line.
var suggestionsPattern = regexp.MustCompile(`\{\s*"suggestions"\s*:\s*\[[^\n]*?\]\s*\}`)

// Extraction is the result of parsing one raw model response.
type Extraction struct {
	Message     string
	IsComplete  bool
	Suggestions []string
}

// Extract detects the completion sentinel, pulls the trailing suggestions
// payload out of a raw model response and returns the cleaned human-readable
// message with both artifacts stripped.
//
// Removal is driven by the outer shape match alone: when the matched text
// fails to parse as JSON the suggestion list is empty, but the matched range
// is still removed from the message. This best-effort cleanup is intentional;
// tightening it would leave broken JSON visible to the user.
func Extract(raw string) Extraction {
	ext := Extraction{Suggestions: []string{}}

	var matched string
	if loc := suggestionsPattern.FindStringIndex(raw); loc != nil {
		matched = raw[loc[0]:loc[1]]
		var payload struct {
			Suggestions []string `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(matched), &payload); err == nil {
			ext.Suggestions = filterSuggestions(payload.Suggestions)
		}
	}

	ext.IsComplete = strings.Contains(raw, CompletionSentinel)

	message := strings.Replace(raw, CompletionSentinel, "", 1)
	if matched != "" {
		message = strings.Replace(message, matched, "", 1)
	}
	ext.Message = strings.TrimSpace(message)
	return ext
}

func filterSuggestions(raw []string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, s := range raw {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > maxSuggestionLength {
			continue
		}
		out = append(out, trimmed)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
