// Package subject recovers the subject phrase from a free-text course
// description so titles and templates can interpolate it.
package subject

import (
	"strings"
	"unicode"
)

// Fallback is returned when nothing meaningful survives normalization.
const Fallback = "the subject"

var openers = [][]string{
	{"i", "would", "like", "to"},
	{"i'd", "like", "to"},
	{"i", "want", "to"},
	{"i", "need", "to"},
	{"we", "would", "like", "to"},
	{"we", "want", "to"},
	{"we", "need", "to"},
	{"help", "me"},
	{"let's"},
	{"please"},
}

var (
	scaffoldVerbs    = set("create", "make", "build", "develop")
	scaffoldArticles = set("a", "an")
	scaffoldPreps    = set("on", "about", "regarding", "concerning")

	courseNouns = set("course", "training", "learning", "lesson", "module", "class", "workshop", "seminar")
	stopTokens  = set("about", "regarding", "concerning", "in", "the")
)

// Normalize case-folds description and strips prompt scaffolding, leaving the
// subject noun phrase. It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	if s == Fallback {
		return Fallback
	}

	tokens := tokenize(s)
	for {
		next := strip(tokens)
		if len(next) == len(tokens) {
			break
		}
		tokens = next
	}

	out := strings.Join(tokens, " ")
	if len([]rune(out)) < 2 {
		return Fallback
	}
	return out
}

func tokenize(s string) []string {
	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '+' && r != '#'
		})
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// strip runs one pass of the ordered rules. Each rule only removes tokens, so
// repeating until the length stops changing reaches a fixed point.
func strip(tokens []string) []string {
	tokens = stripOpener(tokens)
	tokens = stripScaffolding(tokens)

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if courseNouns[t] || stopTokens[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func stripOpener(tokens []string) []string {
	for _, opener := range openers {
		if hasPrefix(tokens, opener) {
			return tokens[len(opener):]
		}
	}
	return tokens
}

// stripScaffolding removes "{verb} [a|an] course [prep]" wherever it appears.
// The optional words are consumed greedily so the longest form goes first.
func stripScaffolding(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if n := matchScaffold(tokens[i:]); n > 0 {
			i += n - 1
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

func matchScaffold(tokens []string) int {
	if len(tokens) < 2 || !scaffoldVerbs[tokens[0]] {
		return 0
	}
	i := 1
	if scaffoldArticles[tokens[i]] {
		i++
	}
	if i >= len(tokens) || tokens[i] != "course" {
		return 0
	}
	i++
	if i < len(tokens) && scaffoldPreps[tokens[i]] {
		i++
	}
	return i
}

func hasPrefix(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
