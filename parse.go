package uniqlist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	reCodeFence = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	reQuoted    = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// ExtractItems parses items out of a freeform (unguided) model response.
//
// The happy path is a JSON array somewhere in the text: markdown code fences
// are stripped, the slice from the first '[' to its closing ']' is parsed,
// and both a flat array of strings and an array of objects with a "name"
// field are accepted. Truncated responses (no closing bracket) and malformed
// JSON fall back to harvesting every double-quoted substring after the '['.
//
// Returns [ErrNoItems] only when nothing salvageable is found at all.
func ExtractItems(text string) ([]string, error) {
	text = reCodeFence.ReplaceAllString(text, "")

	start := strings.Index(text, "[")
	if start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			if items, ok := parseJSONItems(text[start : end+1]); ok {
				return items, nil
			}
		}
		// Truncated or malformed: salvage quoted substrings after the '['.
		return quotedItems(text[start+1:])
	}

	return quotedItems(text)
}

// parseJSONItems attempts a strict JSON parse of an array slice.
func parseJSONItems(slice string) ([]string, bool) {
	var flat []string
	if err := json.Unmarshal([]byte(slice), &flat); err == nil {
		return flat, true
	}

	var objects []map[string]any
	if err := json.Unmarshal([]byte(slice), &objects); err != nil {
		return nil, false
	}
	items := make([]string, 0, len(objects))
	for _, obj := range objects {
		name, ok := obj["name"].(string)
		if !ok {
			return nil, false
		}
		items = append(items, name)
	}
	return items, true
}

// quotedItems harvests all double-quoted substrings from text.
func quotedItems(text string) ([]string, error) {
	matches := reQuoted.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoItems, truncateForError(text))
	}

	items := make([]string, 0, len(matches))
	for _, m := range matches {
		unescaped := strings.ReplaceAll(m[1], `\"`, `"`)
		unescaped = strings.ReplaceAll(unescaped, `\\`, `\`)
		if unescaped != "" {
			items = append(items, unescaped)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: only empty strings found", ErrNoItems)
	}
	return items, nil
}

func truncateForError(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
