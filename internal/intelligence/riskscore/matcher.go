package riskscore

import "strings"

// Hit is one severity keyword found inside a context window.
type Hit struct {
	Level   int
	Keyword string
	Weight  int
}

// Matcher finds severity keywords in context windows.  Matching is
// case-insensitive literal substring search, with at most one Hit per
// (tier, keyword) pair per window; a keyword that is a substring of another
// tier's keyword contributes to both.  Keywords are folded to lower case
// once at construction.
type Matcher struct {
	tiers []foldedTier
}

type foldedTier struct {
	level    int
	weight   int
	keywords []string
}

// NewMatcher builds a Matcher from a validated dictionary.
func NewMatcher(dict *Dictionary) *Matcher {
	tiers := make([]foldedTier, 0, len(dict.Tiers))
	for _, t := range dict.Tiers {
		folded := make([]string, len(t.Keywords))
		for i, kw := range t.Keywords {
			folded[i] = strings.ToLower(kw)
		}
		tiers = append(tiers, foldedTier{level: t.Level, weight: t.Weight, keywords: folded})
	}
	return &Matcher{tiers: tiers}
}

// Match returns one Hit for every (tier, keyword) pair present in the window
// text.  Repetition of a keyword inside a single window adds nothing; only
// the same keyword appearing in separate windows counts more than once.
func (m *Matcher) Match(windowText string) []Hit {
	if windowText == "" {
		return nil
	}
	lower := strings.ToLower(windowText)

	var hits []Hit
	for _, tier := range m.tiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				hits = append(hits, Hit{Level: tier.level, Keyword: kw, Weight: tier.weight})
			}
		}
	}
	return hits
}
