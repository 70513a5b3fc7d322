package riskscore

import (
	"github.com/docuvault/docrisk/internal/domain/document"
)

// Aggregation is the scoring result for one entity across a set of
// documents.
type Aggregation struct {
	// TotalScore is the sum of weights of every keyword hit across every
	// context window in every document.
	TotalScore int

	// PeakTier is the highest severity level that produced at least one
	// hit; 0 when nothing matched.
	PeakTier int

	// MentionCount is the number of name occurrences (context windows)
	// found across all documents, including windows with no keyword hits.
	MentionCount int
}

// Aggregator runs the scan-then-match pipeline for one entity over its
// documents and folds the hits into an Aggregation.
type Aggregator struct {
	scanner *Scanner
	matcher *Matcher
}

// NewAggregator wires a Scanner and Matcher into a scoring pipeline.
func NewAggregator(scanner *Scanner, matcher *Matcher) *Aggregator {
	return &Aggregator{scanner: scanner, matcher: matcher}
}

// Score computes the aggregation for an entity name across its documents.
// Documents with empty content contribute nothing.  A keyword contributes at
// most once per window, but the same keyword appearing in two overlapping
// windows is counted in both; mention volume is part of the signal.
func (a *Aggregator) Score(name string, docs []*document.Document) Aggregation {
	var agg Aggregation
	for _, doc := range docs {
		windows := a.scanner.Scan(doc.Content, name)
		agg.MentionCount += len(windows)
		for _, w := range windows {
			for _, hit := range a.matcher.Match(w.Text) {
				agg.TotalScore += hit.Weight
				if hit.Level > agg.PeakTier {
					agg.PeakTier = hit.Level
				}
			}
		}
	}
	return agg
}
