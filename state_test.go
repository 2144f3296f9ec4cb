package uniqlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(n int) *GenerationState {
	return NewGenerationState(n, NewNormalizer(DefaultNormalizerConfig()))
}

func TestGenerationState_Absorb(t *testing.T) {
	s := newTestState(10)

	added := s.Absorb([]string{"Python", "Java", "python", "The Java", "Go"})
	assert.Equal(t, 3, added)
	assert.Equal(t, []string{"Python", "Java", "Go"}, s.Ordered)
	assert.Equal(t, 5, s.TotalGenerated)
	assert.Equal(t, 2, s.DuplicatesFound)
	assert.Equal(t, 1, s.DupFrequency["python"])
	assert.Equal(t, 1, s.DupFrequency["java"])
}

// Re-absorbing the same candidates must not change Ordered or the seen set,
// only the counters.
func TestGenerationState_AbsorbIdempotent(t *testing.T) {
	s := newTestState(10)

	s.Absorb([]string{"Python", "Java"})
	before := append([]string(nil), s.Ordered...)

	added := s.Absorb([]string{"Python", "Java"})
	assert.Equal(t, 0, added)
	assert.Equal(t, before, s.Ordered)
	assert.Equal(t, 4, s.TotalGenerated)
	assert.Equal(t, 2, s.DuplicatesFound)
	assert.Equal(t, len(s.Ordered), len(s.seen))
	assert.Equal(t, len(s.Ordered), len(s.seenOrder))
}

func TestGenerationState_AbsorbSkipsEmptyKeys(t *testing.T) {
	s := newTestState(10)

	added := s.Absorb([]string{"", "  ", "!!!", "Python"})
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"Python"}, s.Ordered)
	assert.Equal(t, 0, s.DuplicatesFound)
}

func TestGenerationState_Remaining(t *testing.T) {
	s := newTestState(3)
	assert.Equal(t, 3, s.Remaining())

	s.Absorb([]string{"a1", "b2", "c3", "d4"})
	assert.Equal(t, 4, s.UniqueCount())
	assert.Equal(t, 0, s.Remaining())
}

func TestGenerationState_AvoidWindow(t *testing.T) {
	s := newTestState(10)
	s.Absorb([]string{"aa1", "bb2", "cc3", "dd4", "ee5"})

	// Round 0 starts at the head.
	assert.Equal(t, []string{"aa1", "bb2", "cc3"}, s.AvoidWindow(0, 3, 2))

	// Round 1 strides forward.
	assert.Equal(t, []string{"cc3", "dd4", "ee5"}, s.AvoidWindow(1, 3, 2))

	// Round 2 wraps around the end.
	assert.Equal(t, []string{"ee5", "aa1", "bb2"}, s.AvoidWindow(2, 3, 2))

	// Size larger than the list clamps to the whole list.
	assert.Len(t, s.AvoidWindow(0, 40, 20), 5)

	// Empty state yields no window.
	assert.Nil(t, newTestState(10).AvoidWindow(0, 3, 2))
}

func TestGenerationState_TopOffenders(t *testing.T) {
	s := newTestState(10)
	s.Absorb([]string{"alpha", "beta", "gamma"})
	s.Absorb([]string{"alpha", "alpha", "beta", "gamma", "gamma", "gamma"})

	offenders := s.TopOffenders(2)
	require.Len(t, offenders, 2)
	assert.Equal(t, Offender{Key: "gamma", Count: 3}, offenders[0])
	assert.Equal(t, Offender{Key: "alpha", Count: 2}, offenders[1])

	// Ties break by key, ascending.
	s2 := newTestState(10)
	s2.Absorb([]string{"zeta", "eta"})
	s2.Absorb([]string{"zeta", "eta"})
	tied := s2.TopOffenders(5)
	require.Len(t, tied, 2)
	assert.Equal(t, "eta", tied[0].Key)
	assert.Equal(t, "zeta", tied[1].Key)
}

func TestGenerationState_Diagnostics(t *testing.T) {
	s := newTestState(3)
	s.Absorb([]string{"alpha", "beta", "alpha"})
	s.Fail("ran out of passes")
	s.Fail("second reason is ignored")

	d := s.Diagnostics()
	assert.False(t, d.Success)
	assert.Equal(t, 2, d.UniqueCount)
	assert.Equal(t, 3, d.TargetCount)
	assert.InDelta(t, 1.0/3.0, d.DuplicateRate, 1e-9)
	assert.Equal(t, "ran out of passes", d.FailureReason)
	require.Len(t, d.TopDuplicates, 1)
	assert.Equal(t, "alpha", d.TopDuplicates[0].Key)

	s.Absorb([]string{"gamma"})
	assert.True(t, s.Diagnostics().Success)
}
