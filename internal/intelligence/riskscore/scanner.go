package riskscore

import "strings"

// ContextRadius is how many characters of surrounding text are captured on
// each side of an entity name occurrence.
const ContextRadius = 250

// Window is one occurrence of an entity name in a document, with its
// surrounding context.  Offsets are rune positions in the case-folded
// content, so the radius is measured in characters rather than bytes.
type Window struct {
	// Start and End bound the context slice, clamped to the document.
	Start int
	End   int

	// MatchStart is the offset of the name occurrence itself.
	MatchStart int

	// Text is the case-folded context slice.
	Text string
}

// Scanner finds every occurrence of an entity name in document text and
// extracts a context window around each.  Matching is case-insensitive,
// literal (no pattern metacharacters), and non-overlapping: after a match at
// offset i the scan resumes at i+len(name).
type Scanner struct{}

// NewScanner returns a ready Scanner.
func NewScanner() *Scanner { return &Scanner{} }

// Scan returns the context windows for every occurrence of name in content,
// in document order.  An empty name or empty content yields no windows.
//
// The search and the window slicing both run over the same folded rune
// sequence: case folding can change byte and rune counts (ⱥ is one byte
// wider than Ⱥ, lowercase İ is two runes), so offsets from the folded text
// must never be applied to the original.
func (s *Scanner) Scan(content, name string) []Window {
	if name == "" || content == "" {
		return nil
	}

	folded := []rune(strings.ToLower(content))
	target := []rune(strings.ToLower(name))
	if len(target) == 0 || len(target) > len(folded) {
		return nil
	}

	var windows []Window
	for from := 0; ; {
		at := indexRunes(folded, target, from)
		if at < 0 {
			break
		}

		start := at - ContextRadius
		if start < 0 {
			start = 0
		}
		end := at + len(target) + ContextRadius
		if end > len(folded) {
			end = len(folded)
		}

		windows = append(windows, Window{
			Start:      start,
			End:        end,
			MatchStart: at,
			Text:       string(folded[start:end]),
		})

		from = at + len(target)
	}
	return windows
}

// indexRunes returns the offset of the first occurrence of target in
// haystack at or after from, or -1 when absent.
func indexRunes(haystack, target []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(target) <= len(haystack); i++ {
		if haystack[i] != target[0] {
			continue
		}
		j := 1
		for ; j < len(target); j++ {
			if haystack[i+j] != target[j] {
				break
			}
		}
		if j == len(target) {
			return i
		}
	}
	return -1
}
