package uniqlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		expected []string
	}{
		{
			name: "letter suffix group at threshold is dropped",
			items: []string{
				"Series A", "Series B", "Real Thing", "Series C",
				"Series D", "Series E",
			},
			expected: []string{"Real Thing"},
		},
		{
			name: "group below threshold is kept",
			items: []string{
				"Phase A", "Phase B", "Phase C", "Phase D",
			},
			expected: []string{"Phase A", "Phase B", "Phase C", "Phase D"},
		},
		{
			name: "digit suffixes count too",
			items: []string{
				"Item 1", "Item 2", "Item 3", "Item 4", "Item 10",
				"Genuine Entry",
			},
			expected: []string{"Genuine Entry"},
		},
		{
			name: "prefix match is case-insensitive",
			items: []string{
				"option a", "Option B", "OPTION C", "option D", "Option e",
			},
			expected: []string{},
		},
		{
			name: "three digit suffix is not a placeholder shape",
			items: []string{
				"Area 1", "Area 2", "Area 3", "Area 4", "Area 404",
			},
			expected: []string{"Area 1", "Area 2", "Area 3", "Area 4", "Area 404"},
		},
		{
			name: "repeated identical suffix counts once",
			items: []string{
				"Type A", "Type A", "Type A", "Type A", "Type A", "Type B",
			},
			expected: []string{"Type A", "Type A", "Type A", "Type A", "Type A", "Type B"},
		},
		{
			name:     "empty input",
			items:    []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilterPlaceholders(tt.items))
		})
	}
}

// Survivors must keep their relative order even when a group in the middle
// is dropped.
func TestFilterPlaceholders_PreservesOrder(t *testing.T) {
	items := []string{
		"First", "Slot A", "Second", "Slot B", "Slot C",
		"Third", "Slot D", "Slot E", "Fourth",
	}
	assert.Equal(t,
		[]string{"First", "Second", "Third", "Fourth"},
		FilterPlaceholders(items))
}
