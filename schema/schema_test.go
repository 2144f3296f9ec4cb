package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsArray_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		wantErr bool
	}{
		{"array of strings", []any{"Alpha", "Beta"}, false},
		{"empty array", []any{}, false},
		{"non-string element", []any{"Alpha", float64(2)}, true},
		{"empty string element", []any{"Alpha", ""}, true},
		{"not an array", map[string]any{"items": []any{"Alpha"}}, true},
		{"bare string", "Alpha", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ItemsArray.Validate(tt.data)
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStringArray(t *testing.T) {
	raw := StringArray(16)
	assert.Equal(t, "array", raw["type"])
	assert.Equal(t, 16, raw["maxItems"])

	// maxItems <= 0 means unbounded.
	_, bounded := StringArray(0)["maxItems"]
	assert.False(t, bounded)

	s, err := Compile(StringArray(2))
	require.NoError(t, err)
	assert.NoError(t, s.Validate([]any{"Alpha", "Beta"}))
	assert.Error(t, s.Validate([]any{"Alpha", "Beta", "Gamma"}))
}

func TestCompile(t *testing.T) {
	s, err := Compile(map[string]any{"type": "number"})
	require.NoError(t, err)
	assert.NoError(t, s.Validate(float64(3)))
	assert.Error(t, s.Validate("three"))
	assert.Equal(t, map[string]any{"type": "number"}, s.Raw())

	// nil raw compiles to a nil, always-valid schema.
	none, err := Compile(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.NoError(t, none.Validate("anything"))

	_, err = Compile(map[string]any{"type": 12345})
	assert.Error(t, err)
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(map[string]any{"type": 12345})
	})
}
