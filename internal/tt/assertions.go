package tt

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// AssertItemsEqual fails the test with a unified diff when two item lists
// differ. The diff reads much better than testify's one-line slice dump once
// lists grow past a handful of entries.
func AssertItemsEqual(t *testing.T, expected, actual []string) {
	t.Helper()
	if equalSlices(expected, actual) {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        expected,
		B:        actual,
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("item lists differ (diff failed: %v)\nexpected: %v\nactual:   %v",
			err, expected, actual)
	}
	t.Fatalf("item lists differ:\n%s", strings.TrimRight(diff, "\n"))
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
