package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *segmenter, text string) []string {
	t.Helper()
	var segs []string
	for seg := range s.segments(text) {
		segs = append(segs, seg)
	}
	return segs
}

// Concatenating the segments must always rebuild the input byte-for-byte,
// whatever the pattern does or does not match.
func TestSegmentsTotality(t *testing.T) {
	inputs := []string{
		"Hello've world123 how's it    going!!!?",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\nmixed",
		"числа 123 and 中文字 mixed scripts",
		"🙂🙂 emoji!!",
		"'s's'll I'VE",
		"1234567890",
	}
	for _, pattern := range []string{GPT2SplitPattern, GPT4SplitPattern} {
		seg, err := newSegmenter(pattern)
		require.NoError(t, err)
		for _, in := range inputs {
			assert.Equal(t, in, strings.Join(collect(t, seg, in), ""), "pattern %q input %q", pattern, in)
		}
	}
}

func TestSegmentsNilIsWholeText(t *testing.T) {
	var s *segmenter
	assert.Equal(t, []string{"one whole chunk"}, collect(t, s, "one whole chunk"))
}

func TestSegmentsEmptyText(t *testing.T) {
	seg, err := newSegmenter(GPT4SplitPattern)
	require.NoError(t, err)
	assert.Empty(t, collect(t, seg, ""))

	var s *segmenter
	assert.Empty(t, collect(t, s, ""))
}

func TestSegmentsInvalidUTF8StaysIntact(t *testing.T) {
	seg, err := newSegmenter(GPT4SplitPattern)
	require.NoError(t, err)
	in := "abc\xff\xfedef"
	assert.Equal(t, []string{in}, collect(t, seg, in))
}

func TestGPT4PatternBasics(t *testing.T) {
	seg, err := newSegmenter(GPT4SplitPattern)
	require.NoError(t, err)

	got := collect(t, seg, "Hello world")
	assert.Equal(t, []string{"Hello", " world"}, got)

	// Digit runs are capped at three.
	got = collect(t, seg, "12345")
	assert.Equal(t, []string{"123", "45"}, got)

	// Case-insensitive contractions.
	got = collect(t, seg, "I'VE done")
	assert.Equal(t, []string{"I", "'VE", " done"}, got)
}

func TestGPT2PatternBasics(t *testing.T) {
	seg, err := newSegmenter(GPT2SplitPattern)
	require.NoError(t, err)

	got := collect(t, seg, "Hello world!")
	assert.Equal(t, []string{"Hello", " world", "!"}, got)

	// Trailing space before a word stays with the final whitespace rule.
	got = collect(t, seg, "a  b")
	assert.Equal(t, []string{"a", " ", " b"}, got)
}

func TestNewSegmenterBadPattern(t *testing.T) {
	_, err := newSegmenter("([unclosed")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewWithPattern("([unclosed")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// A raw newline is valid regexp2 syntax but could never survive the
// single-line pattern field of the model file.
func TestNewWithPatternRejectsNewline(t *testing.T) {
	_, err := NewWithPattern("a\nb")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewWithPattern("a\rb")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	// The escaped form is the supported spelling.
	_, err = NewWithPattern(`a\nb`)
	assert.NoError(t, err)
}
