package uniqlist

import (
	"regexp"
	"strings"
)

// Backends under pressure sometimes pad their output with enumerated filler:
// "Series A" .. "Series J", "Item 1" .. "Item 10". The filter catches these
// by shape alone, with no hardcoded vocabulary: an item whose last token is a
// single letter or a 1-2 digit number belongs to the group named by its
// prefix, and a prefix that shows up with many distinct suffixes is almost
// certainly a template, not content.

// placeholderSuffixThreshold is the number of distinct suffixes at which a
// prefix group is discarded wholesale.
const placeholderSuffixThreshold = 5

var rePlaceholder = regexp.MustCompile(`^(.*\S)\s+([A-Za-z]|\d{1,2})$`)

// FilterPlaceholders removes enumerated placeholder groups from items,
// preserving the order of everything it keeps. Items are grouped by their
// prefix (case-insensitive); once a group has placeholderSuffixThreshold
// distinct suffixes, every item in it is dropped.
func FilterPlaceholders(items []string) []string {
	if len(items) == 0 {
		return items
	}

	type membership struct {
		prefix string
	}

	suffixes := make(map[string]map[string]bool)
	groups := make([]membership, len(items))

	for i, item := range items {
		m := rePlaceholder.FindStringSubmatch(strings.TrimSpace(item))
		if m == nil {
			continue
		}
		prefix := strings.ToLower(m[1])
		suffix := strings.ToLower(m[2])
		if suffixes[prefix] == nil {
			suffixes[prefix] = make(map[string]bool)
		}
		suffixes[prefix][suffix] = true
		groups[i] = membership{prefix: prefix}
	}

	kept := make([]string, 0, len(items))
	for i, item := range items {
		prefix := groups[i].prefix
		if prefix != "" && len(suffixes[prefix]) >= placeholderSuffixThreshold {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
