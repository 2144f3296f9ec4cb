package uniqlist

import (
	"fmt"
	"strings"
)

// avoidListTokenBudget caps the avoid-list text embedded in a backfill
// prompt. The window is already bounded by config, but very long keys could
// still blow the prompt up; chunking keeps the sample inside a fixed share
// of the context window.
const avoidListTokenBudget = 600

// PromptBuilder renders the engine's prompts. Two pass-1 wordings are
// supported: [PromptStrict] issues an imperative instruction, [PromptMinimal]
// asks for varied, concrete items and explicitly discourages placeholders.
type PromptBuilder struct {
	style PromptStyle
}

// NewPromptBuilder creates a builder with the given pass-1 style.
func NewPromptBuilder(style PromptStyle) *PromptBuilder {
	return &PromptBuilder{style: style}
}

// PassOne renders the initial over-generation prompt requesting m items.
func (p *PromptBuilder) PassOne(query string, m int) string {
	var sb strings.Builder
	switch p.style {
	case PromptMinimal:
		fmt.Fprintf(&sb, "List %d varied, concrete examples of: %s.\n", m, query)
		sb.WriteString("Every entry must be a real, specific thing. ")
		sb.WriteString("Do not use placeholders, numbering templates, or made-up filler.\n")
	default: // PromptStrict
		fmt.Fprintf(&sb, "Generate exactly %d distinct items for the request: %s.\n", m, query)
		sb.WriteString("No two items may refer to the same thing. ")
		sb.WriteString("Do not repeat, rephrase, or pad the list.\n")
	}
	sb.WriteString("Respond with a JSON array of strings only.")
	return sb.String()
}

// Backfill renders a top-up prompt for need more items, steering the model
// away from the avoid-list sample and the most-repeated offenders.
func (p *PromptBuilder) Backfill(
	query string,
	need int,
	avoid []string,
	offenders []Offender,
	mode GenerationMode,
) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d more distinct items for the request: %s.\n", need, query)
	p.writeAvoidList(&sb, avoid)
	p.writeOffenders(&sb, offenders)
	p.writeModeTail(&sb, mode)
	return sb.String()
}

// EscalationRetry renders the higher-temperature retry used when a round
// produced zero new items. It names the top offenders explicitly instead of
// hinting at them.
func (p *PromptBuilder) EscalationRetry(
	query string,
	need int,
	avoid []string,
	offenders []Offender,
	mode GenerationMode,
) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The previous list for %q keeps repeating itself.\n", query)
	fmt.Fprintf(&sb, "Generate %d genuinely new items.\n", need)
	if len(offenders) > 0 {
		sb.WriteString("You have already produced these repeatedly; do NOT produce them again:\n")
		for _, o := range offenders {
			fmt.Fprintf(&sb, "- %s (repeated %d times)\n", o.Key, o.Count)
		}
	}
	p.writeAvoidList(&sb, avoid)
	p.writeModeTail(&sb, mode)
	return sb.String()
}

// LastMile renders the deterministic completion prompt for the final 1-2
// missing items.
func (p *PromptBuilder) LastMile(query string, need int, avoid []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Exactly %d more item(s) are needed for the request: %s.\n", need, query)
	p.writeAvoidList(&sb, avoid)
	fmt.Fprintf(&sb, "Respond with a JSON array containing exactly %d string(s).", need)
	return sb.String()
}

func (p *PromptBuilder) writeAvoidList(sb *strings.Builder, avoid []string) {
	if len(avoid) == 0 {
		return
	}
	// Keep only as much of the sample as fits the prompt's token share.
	chunks := ChunkByTokenBudget(avoid, avoidListTokenBudget)
	sample := chunks[0]

	sb.WriteString("Already collected (do not repeat any of these, or close variants of them):\n")
	fmt.Fprintf(sb, "%s\n", strings.Join(sample, "; "))
}

func (p *PromptBuilder) writeOffenders(sb *strings.Builder, offenders []Offender) {
	if len(offenders) == 0 {
		return
	}
	sb.WriteString("These keep coming back as duplicates; avoid anything similar:\n")
	for _, o := range offenders {
		fmt.Fprintf(sb, "- %s\n", o.Key)
	}
}

func (p *PromptBuilder) writeModeTail(sb *strings.Builder, mode GenerationMode) {
	switch mode {
	case ModeUnguided:
		sb.WriteString("Reply with the items as a JSON array of strings. " +
			"Do not add explanations before the array.")
	default:
		sb.WriteString("Respond with a JSON array of strings only.")
	}
}
