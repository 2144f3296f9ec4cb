package uniqlist

import "context"

// RoundReport summarizes one backfill round for the strategy that ran it.
type RoundReport struct {
	// Mode is the mode the round ran in.
	Mode GenerationMode

	// Added is how many new unique items the round contributed.
	Added int

	// Generated is how many candidates the round produced in total,
	// escalation retry included.
	Generated int

	// Duplicates is how many of those candidates were rejected.
	Duplicates int

	// Boosted is true when the round ran with a boosted token budget.
	Boosted bool

	// Escalated is true when the zero-progress retry fired.
	Escalated bool
}

// DuplicateRate returns the round's own duplicate rate: duplicates over
// generated, 0 when the round generated nothing.
func (r *RoundReport) DuplicateRate() float64 {
	if r.Generated == 0 {
		return 0
	}
	return float64(r.Duplicates) / float64(r.Generated)
}

// RoundContext is the engine surface a [BackfillStrategy] works through for
// one round. It exposes the accumulated state read-only and the two round
// primitives; all mutation goes through the state's Absorb inside them.
type RoundContext struct {
	engine *Engine
	runID  string
	query  string
	state  *GenerationState
	round  int
	seed   *uint64
}

// Config returns the run's configuration.
func (rc *RoundContext) Config() Config {
	return rc.engine.cfg
}

// State returns the run's accumulator.
func (rc *RoundContext) State() *GenerationState {
	return rc.state
}

// Round returns the 1-indexed backfill round number.
func (rc *RoundContext) Round() int {
	return rc.round
}

// Query returns the run's query.
func (rc *RoundContext) Query() string {
	return rc.query
}

// GuidedRound runs one schema-constrained backfill round.
func (rc *RoundContext) GuidedRound(ctx context.Context, boosted bool) (*RoundReport, error) {
	return rc.runRound(ctx, ModeGuided, boosted)
}

// UnguidedRound runs one freeform backfill round, parsed tolerantly.
func (rc *RoundContext) UnguidedRound(ctx context.Context, boosted bool) (*RoundReport, error) {
	return rc.runRound(ctx, ModeUnguided, boosted)
}

// runRound is the shared round body: compute the backfill delta, build the
// avoid-list prompt, issue the request, filter and absorb. A round that
// yields zero new items gets exactly one higher-temperature, higher-token
// retry naming the worst offenders before the round gives up.
func (rc *RoundContext) runRound(
	ctx context.Context,
	mode GenerationMode,
	boosted bool,
) (*RoundReport, error) {
	cfg := rc.engine.cfg
	state := rc.state

	report := &RoundReport{Mode: mode, Boosted: boosted}
	genBefore := state.TotalGenerated
	dupBefore := state.DuplicatesFound
	uniqueBefore := state.UniqueCount()

	need := BackfillCount(cfg.Budget, state.TargetCount, state.Remaining())
	avoid := state.AvoidWindow(rc.round-1, cfg.AvoidWindowSize, cfg.AvoidWindowStride)
	offenders := state.TopOffenders(cfg.OffenderHintCount)

	prompt := rc.engine.prompts.Backfill(rc.query, need, avoid, offenders, mode)
	maxTokens := ResponseTokensFor(cfg.Budget, need, EstimateTokens(prompt), mode)
	if boosted {
		maxTokens = BoostTokens(cfg.Budget, maxTokens)
	}

	req := &GenerateRequest{
		Prompt:            prompt,
		Mode:              mode,
		Sampling:          cfg.Sampling,
		Temperature:       cfg.Temperature,
		Seed:              rc.roundSeed(),
		MaxResponseTokens: maxTokens,
	}

	if err := rc.issueAndAbsorb(ctx, req); err != nil {
		rc.finishReport(report, state, genBefore, dupBefore, uniqueBefore)
		return report, err
	}

	// Zero-progress escalation: one retry at higher temperature with more
	// token room, naming the top offenders explicitly.
	if state.UniqueCount() == uniqueBefore {
		report.Escalated = true

		retryOffenders := state.TopOffenders(cfg.RetryOffenderCount)
		retryPrompt := rc.engine.prompts.EscalationRetry(rc.query, need, avoid, retryOffenders, mode)

		retryReq := &GenerateRequest{
			Prompt:            retryPrompt,
			Mode:              mode,
			Sampling:          cfg.Sampling,
			Temperature:       cfg.RetryTemperature,
			Seed:              rc.roundSeed(),
			MaxResponseTokens: BoostTokens(cfg.Budget, maxTokens),
		}

		if err := rc.issueAndAbsorb(ctx, retryReq); err != nil {
			rc.finishReport(report, state, genBefore, dupBefore, uniqueBefore)
			return report, err
		}
	}

	rc.finishReport(report, state, genBefore, dupBefore, uniqueBefore)
	return report, nil
}

// issueAndAbsorb sends one request through the retry client and folds the
// result into the state. Unguided responses go through the tolerant parser;
// a parse failure counts as a failed request.
func (rc *RoundContext) issueAndAbsorb(ctx context.Context, req *GenerateRequest) error {
	resp, err := rc.engine.client.Do(ctx, rc.runID, rc.state.PassCount, rc.state, req)
	if err != nil {
		return err
	}

	items := resp.Items
	if req.Mode == ModeUnguided {
		if items, err = ExtractItems(resp.Text); err != nil {
			return err
		}
	}
	rc.state.Absorb(FilterPlaceholders(items))
	return nil
}

func (rc *RoundContext) finishReport(
	report *RoundReport,
	state *GenerationState,
	genBefore, dupBefore, uniqueBefore int,
) {
	report.Generated = state.TotalGenerated - genBefore
	report.Duplicates = state.DuplicatesFound - dupBefore
	report.Added = state.UniqueCount() - uniqueBefore
}

// roundSeed derives a per-round seed from the run seed so that repeated
// rounds don't replay the identical sample. Nil when the run is unseeded.
func (rc *RoundContext) roundSeed() *uint64 {
	if rc.seed == nil {
		return nil
	}
	derived := *rc.seed + uint64(rc.round)
	return &derived
}
