package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"agricensus/internal/model"
)

// MatchTier records which rule of the matching policy produced a match
type MatchTier int

const (
	TierLabel MatchTier = iota + 1 // exact match on normalized label
	TierValue                      // exact match on canonical token
	TierContains                   // substring containment, declaration order wins
)

// Match is a raw answer resolved to one declared option of a question
type Match struct {
	Option model.Option
	Index  int // position in the declared option list
	Tier   MatchTier
}

// accentFold strips combining marks so "Côte" compares as "cote".
var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// MatchAnswer resolves a free-form respondent answer to one of the question's
// declared options. The tiered policy is deliberately permissive because
// upstream answers are free-form field data:
//
//  1. exact match on the trimmed, case-folded label
//  2. exact match on the canonical token form of the value
//     (whitespace collapsed to "_", apostrophes stripped, accents folded)
//  3. substring containment in either direction
//
// Ties are broken by declaration order, never by confidence. The second
// return is false when no rule matched.
func MatchAnswer(q model.Question, raw string) (Match, bool) {
	answer := normalize(raw)
	if answer == "" || len(q.Options) == 0 {
		return Match{}, false
	}

	for i, opt := range q.Options {
		if normalize(opt.Label) == answer {
			return Match{Option: opt, Index: i, Tier: TierLabel}, true
		}
	}

	token := CanonicalToken(raw)
	for i, opt := range q.Options {
		if CanonicalToken(opt.Value) == token {
			return Match{Option: opt, Index: i, Tier: TierValue}, true
		}
	}

	for i, opt := range q.Options {
		label := normalize(opt.Label)
		if label == "" {
			continue
		}
		if strings.Contains(label, answer) || strings.Contains(answer, label) {
			return Match{Option: opt, Index: i, Tier: TierContains}, true
		}
	}

	return Match{}, false
}

// normalize trims and case-folds a raw string.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalToken reduces a string to the form canonical option values are
// authored in: lower-cased, accents folded, apostrophes stripped, internal
// whitespace collapsed to "_" ("Côte d'Ivoire" -> "cote_divoire").
func CanonicalToken(s string) string {
	folded, _, err := transform.String(accentFold, normalize(s))
	if err != nil {
		folded = normalize(s)
	}
	folded = strings.NewReplacer("'", "", "’", "").Replace(folded)
	return strings.Join(strings.Fields(folded), "_")
}
