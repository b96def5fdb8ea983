package tokenizer

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Split patterns in regexp2 dialect. The canonical GPT patterns use
// possessive quantifiers, which regexp2 does not support; the GPT-4 pattern
// substitutes atomic groups, which prevent the same backtracking. Go's
// stdlib regexp cannot express either pattern (no lookahead, no atomic
// groups), hence regexp2.
const (
	// GPT2SplitPattern is the GPT-2 pre-tokenization pattern.
	GPT2SplitPattern = `'(?:[sdmt]|ll|ve|re)| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

	// GPT4SplitPattern is the cl100k_base pre-tokenization pattern:
	// contractions, words with an optional leading non-letter, digit runs
	// capped at 3, punctuation runs, isolated newlines, and whitespace.
	GPT4SplitPattern = `'(?i:[sdmt]|ll|ve|re)|(?>[^\r\n\p{L}\p{N}]?)\p{L}+|\p{N}{1,3}| ?(?>[^\s\p{L}\p{N}]+)[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+`
)

// segmenter pre-splits text with a compiled split pattern. A nil segmenter
// treats the whole input as a single segment (byte-only mode).
type segmenter struct {
	re *regexp2.Regexp
}

func newSegmenter(pattern string) (*segmenter, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: split pattern %q: %v", ErrInvalidConfig, pattern, err)
	}
	return &segmenter{re: re}, nil
}

// segments yields the pattern's matches over text in order. Any text the
// pattern skips between matches is yielded as its own segment, so the
// concatenation of all segments always reconstructs text exactly, even for
// patterns that are not total.
func (s *segmenter) segments(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}
		if s == nil {
			yield(text)
			return
		}
		// The regex engine works on runes; converting invalid UTF-8 to
		// runes would corrupt the bytes. Such input skips segmentation and
		// is encoded as one chunk, keeping round-trips byte-exact.
		if !utf8.ValidString(text) {
			yield(text)
			return
		}
		runes := []rune(text)
		offset := 0
		for m, _ := s.re.FindRunesMatch(runes); m != nil; m, _ = s.re.FindNextMatch(m) {
			if m.Index > offset {
				if !yield(string(runes[offset:m.Index])) {
					return
				}
			}
			if !yield(m.String()) {
				return
			}
			offset = m.Index + m.Length
		}
		if offset < len(runes) {
			yield(string(runes[offset:]))
		}
	}
}
