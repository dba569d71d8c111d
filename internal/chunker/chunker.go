// Package chunker splits extracted document text into overlapping
// fixed-size windows for embedding.
package chunker

import "github.com/geziefer/docchat/internal/domain"

// DefaultMaxLen is the default segment length in runes.
const DefaultMaxLen = 500

// DefaultOverlap is the default number of runes shared between consecutive
// segments.
const DefaultOverlap = 50

// Window splits text into left-to-right segments of at most maxLen runes,
// with consecutive segments overlapping by overlap runes so that concepts
// spanning a boundary remain retrievable from at least one segment. Splitting
// is a pure function of the text and the fixed configuration.
type Window struct {
	maxLen  int
	overlap int
}

// New creates a chunker. Out-of-range values fall back to the defaults;
// overlap must leave the window a positive step, otherwise it is shrunk.
func New(maxLen, overlap int) *Window {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxLen {
		overlap = maxLen / 4
	}
	return &Window{maxLen: maxLen, overlap: overlap}
}

// MaxLen returns the configured maximum segment length in runes.
func (w *Window) MaxLen() int { return w.maxLen }

// Overlap returns the configured overlap length in runes.
func (w *Window) Overlap() int { return w.overlap }

// Split cuts text into segments. Offsets are rune-based so multi-byte input
// never splits inside a character. Empty input yields no segments.
func (w *Window) Split(text string) []domain.Segment {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := w.maxLen - w.overlap

	segments := make([]domain.Segment, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + w.maxLen
		if end > len(runes) {
			end = len(runes)
		}

		segments = append(segments, domain.Segment{
			Index: len(segments),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return segments
}
