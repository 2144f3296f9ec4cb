package uniqlist

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizerConfig configures the dedup canonicalizer.
type NormalizerConfig struct {
	// TrimPlurals enables the trailing "s"/"es" trim on the final token.
	TrimPlurals bool `yaml:"trim_plurals"`

	// PluralExceptions lists words the plural trim must never touch, in
	// addition to the built-in suffix guards ("-ss", "-sis"). The list is
	// heuristic and will misclassify some inputs (e.g. "glasses"); that is
	// documented behavior, not a bug to fix here.
	PluralExceptions []string `yaml:"plural_exceptions"`
}

// DefaultNormalizerConfig returns the canonicalizer defaults: plural trim on,
// with a fixed irregular-plural exception set.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		TrimPlurals: true,
		PluralExceptions: []string{
			"series", "species", "news", "chess", "darts",
			"mathematics", "physics", "economics", "politics",
			"athletics", "gymnastics", "billiards", "dominoes",
			"children", "people", "women", "men", "mice", "geese",
		},
	}
}

// Normalizer maps a raw item string to its canonical dedup key. Two items
// with the same key are duplicates; this is the engine's sole notion of
// equality. Normalization is pure and deterministic: same input and config,
// same key, always.
type Normalizer struct {
	trimPlurals bool
	exceptions  map[string]bool
	folder      transform.Transformer
}

// Compiled once; rule order matters. Article stripping depends on hyphens
// still being present, so it runs before punctuation stripping.
var (
	reGlyphs      = regexp.MustCompile(`[\x{2122}\x{00AE}\x{00A9}]`)
	reQualifier   = regexp.MustCompile(`\s*[(\[].*?[)\]]`)
	reArticle     = regexp.MustCompile(`^(?:a|an|the)[\s\-]+`)
	rePunctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// NewNormalizer creates a Normalizer from the given config.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	exceptions := make(map[string]bool, len(cfg.PluralExceptions))
	for _, w := range cfg.PluralExceptions {
		exceptions[strings.ToLower(w)] = true
	}
	return &Normalizer{
		trimPlurals: cfg.TrimPlurals,
		exceptions:  exceptions,
		folder: transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
	}
}

// Key returns the canonical dedup key for a raw item.
//
// Examples: "The Matrix" → "matrix", "Star Trek™" → "star trek",
// "Star Trek (2009)" → "star trek", "Heroes" → "hero",
// "The A-Team" → "team".
func (n *Normalizer) Key(raw string) string {
	s := strings.ToLower(raw)

	// Accent folding: NFD, strip combining marks, recompose.
	if folded, _, err := transform.String(n.folder, s); err == nil {
		s = folded
	}

	s = reGlyphs.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", " and ")
	s = reQualifier.ReplaceAllString(s, "")
	s = n.stripArticles(s)
	s = rePunctuation.ReplaceAllString(s, " ")
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))

	if n.trimPlurals {
		s = n.trimPlural(s)
	}
	return s
}

// stripArticles removes leading articles from every colon-separated segment,
// recursively: "The A-Team" sheds "the", then "a-". Hyphens count as word
// separators here.
func (n *Normalizer) stripArticles(s string) string {
	segments := strings.Split(s, ":")
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		for {
			stripped := reArticle.ReplaceAllString(seg, "")
			if stripped == seg {
				break
			}
			seg = stripped
		}
		segments[i] = seg
	}
	return strings.Join(segments, ":")
}

// trimPlural strips a trailing "es" or "s" from the final token when it is
// long enough and not protected by the exception set or suffix guards.
func (n *Normalizer) trimPlural(s string) string {
	idx := strings.LastIndex(s, " ")
	last := s[idx+1:]

	if len(last) <= 4 || n.exceptions[last] {
		return s
	}
	if strings.HasSuffix(last, "ss") || strings.HasSuffix(last, "sis") {
		return s
	}

	var trimmed string
	switch {
	case strings.HasSuffix(last, "es"):
		trimmed = last[:len(last)-2]
	case strings.HasSuffix(last, "s"):
		trimmed = last[:len(last)-1]
	default:
		return s
	}
	return s[:idx+1] + trimmed
}
