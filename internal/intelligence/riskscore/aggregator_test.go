package riskscore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docuvault/docrisk/internal/domain/document"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(NewScanner(), NewMatcher(DefaultDictionary()))
}

func doc(content string) *document.Document {
	return &document.Document{Content: content}
}

func TestScoreSingleWindow(t *testing.T) {
	a := newTestAggregator()

	agg := a.Score("Acme Corp", []*document.Document{
		doc("An allegation of abuse was filed against Acme Corp; one victim came forward."),
	})

	assert.Equal(t, 250, agg.TotalScore)
	assert.Equal(t, 5, agg.PeakTier)
	assert.Equal(t, 1, agg.MentionCount)
}

func TestScoreAccumulatesAcrossDocuments(t *testing.T) {
	a := newTestAggregator()

	agg := a.Score("Acme Corp", []*document.Document{
		doc("Acme Corp received a fine."),
		doc("A lawsuit names Acme Corp."),
		doc("Acme Corp issued a statement."),
	})

	assert.Equal(t, 10+25, agg.TotalScore)
	assert.Equal(t, 3, agg.PeakTier)
	assert.Equal(t, 3, agg.MentionCount)
}

func TestScoreMentionWithoutKeywordsStillCounts(t *testing.T) {
	a := newTestAggregator()

	agg := a.Score("Acme Corp", []*document.Document{
		doc("Acme Corp opened a new office."),
	})

	assert.Equal(t, 0, agg.TotalScore)
	assert.Equal(t, 0, agg.PeakTier)
	assert.Equal(t, 1, agg.MentionCount)
}

func TestScoreKeywordOutsideWindowIgnored(t *testing.T) {
	a := newTestAggregator()

	// The keyword sits farther than ContextRadius from the name, so it
	// falls outside the window and contributes nothing.
	content := "fraud" + strings.Repeat(" ", ContextRadius+10) + "Acme Corp"
	agg := a.Score("Acme Corp", []*document.Document{doc(content)})

	assert.Equal(t, 0, agg.TotalScore)
	assert.Equal(t, 1, agg.MentionCount)
}

func TestScoreRepeatedKeywordInOneWindow(t *testing.T) {
	a := newTestAggregator()

	// Repetition inside a single window does not inflate the score.
	agg := a.Score("Acme Corp", []*document.Document{
		doc("Acme Corp abuse claims, then further abuse claims."),
	})

	assert.Equal(t, 100, agg.TotalScore)
	assert.Equal(t, 5, agg.PeakTier)
	assert.Equal(t, 1, agg.MentionCount)
}

func TestScoreOverlappingWindowsDoubleCount(t *testing.T) {
	a := newTestAggregator()

	// Two nearby mentions produce overlapping windows; a keyword inside
	// the overlap is counted once per window.
	agg := a.Score("Acme", []*document.Document{
		doc("Acme fraud Acme"),
	})

	assert.Equal(t, 2, agg.MentionCount)
	assert.Equal(t, 50, agg.TotalScore)
	assert.Equal(t, 3, agg.PeakTier)
}

func TestScoreEmptyInputs(t *testing.T) {
	a := newTestAggregator()

	assert.Equal(t, Aggregation{}, a.Score("Acme", nil))
	assert.Equal(t, Aggregation{}, a.Score("Acme", []*document.Document{doc("")}))
}
