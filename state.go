package uniqlist

import "sort"

// GenerationState is the mutable accumulator for one in-flight run. It is
// exclusively owned by the run that created it: never shared between
// concurrent runs, never aliased. All counters are monotonically
// non-decreasing; Ordered grows in first-seen order and is never reordered
// or pruned.
type GenerationState struct {
	// TargetCount is the N the run is converging toward.
	TargetCount int

	// Ordered holds the accepted unique items in first-seen order.
	Ordered []string

	// seenOrder holds normalization keys in the same order as Ordered.
	// Kept alongside the set so the avoid-list window can rotate over a
	// stable sequence.
	seenOrder []string
	seen      map[string]bool

	// DupFrequency counts, per key, how often a generated item collided
	// with an already-accepted one.
	DupFrequency map[string]int

	// PassCount counts generation passes, pass-1 included.
	PassCount int

	// BackfillRoundsTotal counts backfill rounds across all strategies.
	BackfillRoundsTotal int

	// TotalGenerated counts every candidate the backend ever returned.
	TotalGenerated int

	// DuplicatesFound counts candidates rejected as duplicates.
	DuplicatesFound int

	// CircuitBreakerTriggered is set once when the breaker trips and is
	// never cleared within a run.
	CircuitBreakerTriggered bool

	// Attempts is the append-only per-call telemetry for this run.
	Attempts []AttemptMetrics

	// FailureReason holds the first captured failure reason, if any.
	FailureReason string

	norm *Normalizer
}

// NewGenerationState creates an empty state for a run targeting n items,
// deduplicating through norm.
func NewGenerationState(n int, norm *Normalizer) *GenerationState {
	return &GenerationState{
		TargetCount:  n,
		seen:         make(map[string]bool),
		DupFrequency: make(map[string]int),
		norm:         norm,
	}
}

// Absorb folds candidate items into the accumulator. For each candidate it
// computes the normalization key; unseen keys append the raw item to Ordered,
// seen keys bump the duplicate histogram. This is the only mutation path
// into Ordered and the seen set. Re-absorbing the same candidates is a no-op
// beyond the counters.
//
// Returns the number of newly accepted items.
func (s *GenerationState) Absorb(candidates []string) int {
	added := 0
	for _, raw := range candidates {
		s.TotalGenerated++

		key := s.norm.Key(raw)
		if key == "" {
			continue
		}
		if s.seen[key] {
			s.DupFrequency[key]++
			s.DuplicatesFound++
			continue
		}
		s.seen[key] = true
		s.seenOrder = append(s.seenOrder, key)
		s.Ordered = append(s.Ordered, raw)
		added++
	}
	return added
}

// UniqueCount returns how many unique items have been accepted.
func (s *GenerationState) UniqueCount() int {
	return len(s.Ordered)
}

// Remaining returns how many items are still missing.
func (s *GenerationState) Remaining() int {
	missing := s.TargetCount - len(s.Ordered)
	if missing < 0 {
		return 0
	}
	return missing
}

// AvoidWindow returns a rotating sample of seen keys for a backfill prompt:
// up to size keys starting at round x stride, wrapping around the seen
// sequence. Later rounds see a different slice of the accumulated list so
// the prompt doesn't fixate on the earliest items.
func (s *GenerationState) AvoidWindow(round, size, stride int) []string {
	total := len(s.seenOrder)
	if total == 0 || size <= 0 {
		return nil
	}
	if size > total {
		size = total
	}

	offset := (round * stride) % total
	window := make([]string, 0, size)
	for i := 0; i < size; i++ {
		window = append(window, s.seenOrder[(offset+i)%total])
	}
	return window
}

// Offender is a duplicate key with its collision count.
type Offender struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TopOffenders returns the n most-repeated duplicate keys, most frequent
// first. Ties break by key for determinism.
func (s *GenerationState) TopOffenders(n int) []Offender {
	offenders := make([]Offender, 0, len(s.DupFrequency))
	for key, count := range s.DupFrequency {
		offenders = append(offenders, Offender{Key: key, Count: count})
	}
	sort.Slice(offenders, func(i, j int) bool {
		if offenders[i].Count != offenders[j].Count {
			return offenders[i].Count > offenders[j].Count
		}
		return offenders[i].Key < offenders[j].Key
	})
	if len(offenders) > n {
		offenders = offenders[:n]
	}
	return offenders
}

// DuplicateRate returns duplicates over total generated for the whole run.
func (s *GenerationState) DuplicateRate() float64 {
	if s.TotalGenerated == 0 {
		return 0
	}
	return float64(s.DuplicatesFound) / float64(s.TotalGenerated)
}

// RecordAttempt appends one per-call telemetry record.
func (s *GenerationState) RecordAttempt(m AttemptMetrics) {
	s.Attempts = append(s.Attempts, m)
}

// Fail records the first failure reason; later calls keep the first.
func (s *GenerationState) Fail(reason string) {
	if s.FailureReason == "" {
		s.FailureReason = reason
	}
}

// diagnosticsTopDuplicates is how many offenders the run summary carries.
const diagnosticsTopDuplicates = 5

// Diagnostics summarizes the state at run end.
func (s *GenerationState) Diagnostics() Diagnostics {
	return Diagnostics{
		TopDuplicates:           s.TopOffenders(diagnosticsTopDuplicates),
		Success:                 len(s.Ordered) >= s.TargetCount,
		UniqueCount:             len(s.Ordered),
		TargetCount:             s.TargetCount,
		DuplicateRate:           s.DuplicateRate(),
		BackfillRounds:          s.BackfillRoundsTotal,
		CircuitBreakerTriggered: s.CircuitBreakerTriggered,
		FailureReason:           s.FailureReason,
	}
}
