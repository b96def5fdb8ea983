package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The classic toy corpus: "aa" wins the first round with 4 occurrences,
// then (97,98) beats (256,97) on the lexicographic tie-break, then the two
// new tokens pair up.
func TestTrainToyCorpus(t *testing.T) {
	tok := New()
	require.NoError(t, tok.Train("aaabdaaabac", 259, nil))

	assert.Equal(t, 3, tok.MergeCount())
	assert.Equal(t, []Pair{{97, 97}, {97, 98}, {256, 257}}, tok.mergeOrder)
	assert.Equal(t, 256, tok.merges[Pair{97, 97}])
	assert.Equal(t, 257, tok.merges[Pair{97, 98}])
	assert.Equal(t, 258, tok.merges[Pair{256, 257}])

	ids := tok.EncodeOrdinary("aaabdaaabac")
	assert.Equal(t, []int{258, 100, 258, 97, 99}, ids)
}

func TestTrainDeterministic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog, the dog barks"
	a, b := New(), New()
	require.NoError(t, a.Train(text, 280, nil))
	require.NoError(t, b.Train(text, 280, nil))
	assert.Equal(t, a.mergeOrder, b.mergeOrder)
}

// Every merged token's bytes are exactly the concatenation of its pair's
// bytes.
func TestTrainVocabConcatenation(t *testing.T) {
	tok := New()
	require.NoError(t, tok.Train("banana bandana banana", 270, nil))

	for k, p := range tok.mergeOrder {
		id := 256 + k
		want := append(append([]byte{}, tok.vocab[p.A]...), tok.vocab[p.B]...)
		assert.Equal(t, want, tok.vocab[id], "merge id %d", id)
	}
}

func TestTrainVocabSize256IsNoMerges(t *testing.T) {
	tok := New()
	require.NoError(t, tok.Train("whatever text", 256, nil))
	assert.Zero(t, tok.MergeCount())
	assert.Equal(t, 256, tok.VocabSize())
}

func TestTrainVocabSizeTooSmall(t *testing.T) {
	err := New().Train("text", 255, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// A tiny corpus runs out of pairs before the requested merge count; that is
// not an error, training just stops.
func TestTrainStopsWhenExhausted(t *testing.T) {
	tok := New()
	require.NoError(t, tok.Train("ab", 300, nil))
	assert.Equal(t, 1, tok.MergeCount())
	assert.Equal(t, []int{256}, tok.EncodeOrdinary("ab"))
}

func TestTrainProgressCallback(t *testing.T) {
	tok := New()
	var seen []TrainProgress
	require.NoError(t, tok.Train("aaabdaaabac", 258, func(p TrainProgress) {
		seen = append(seen, p)
	}))

	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].Iteration)
	assert.Equal(t, 2, seen[0].Total)
	assert.Equal(t, Pair{97, 97}, seen[0].Pair)
	assert.Equal(t, 256, seen[0].NewID)
	assert.Equal(t, "aa", seen[0].Token)
	assert.Equal(t, 4, seen[0].Count)
	assert.Equal(t, Pair{97, 98}, seen[1].Pair)
}

func TestTrainWithPatternRespectsBoundaries(t *testing.T) {
	tok, err := NewWithPattern(GPT4SplitPattern)
	require.NoError(t, err)
	// "ab ab ab": the pattern splits into "ab", " ab", " ab", so the pair
	// (98, 32) across a word boundary never exists.
	require.NoError(t, tok.Train("ab ab ab", 300, nil))
	for p := range tok.merges {
		assert.NotEqual(t, Pair{98, 32}, p)
	}
}

func TestTrainRejectsFixedTokenizer(t *testing.T) {
	trained := New()
	require.NoError(t, trained.Train("aaabdaaabac", 259, nil))
	fixed, err := NewFromSource(trained, "")
	require.NoError(t, err)

	err = fixed.Train("more text", 300, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTrainRejectsSpecialIDInMergeRange(t *testing.T) {
	tok := New()
	require.NoError(t, tok.RegisterSpecialTokens([]SpecialToken{{Literal: "<|end|>", ID: 300}}))

	// 400 merges would claim ids 256..655, colliding with the special.
	err := tok.Train("some corpus", 656, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	// A smaller run that stays below the special id is fine.
	assert.NoError(t, tok.Train("some corpus", 290, nil))
}
