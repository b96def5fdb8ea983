// Package tokenizer implements a byte-level Byte Pair Encoding (BPE)
// tokenizer: training a merge table from a corpus, greedy pair-priority
// encoding, decoding, regex-based pre-segmentation, special tokens, and a
// versioned on-disk model format.
//
// A Tokenizer is immutable once trained or loaded, so concurrent read-only
// Encode/Decode calls are safe without synchronization. Training or loading
// into a shared instance must be serialized by the caller.
package tokenizer

import (
	"fmt"
	"strings"
)

// Tokenizer holds the merge table, the derived vocabulary, the special-token
// registry and the optional split pattern.
//
// Invariants maintained across training, loading and pretrained import:
//   - ids 0..255 map to their raw byte value; merge ids start at 256 and are
//     assigned in learning order, so the assigned id doubles as the merge
//     rank (lower id = earlier learned = higher priority at encode time);
//   - for every merge (a,b)->id, vocab[id] is exactly vocab[a]++vocab[b];
//   - special-token ids never collide with byte or merge ids.
type Tokenizer struct {
	pattern   string
	segmenter *segmenter // nil in byte-only mode: one whole-text segment

	merges     map[Pair]int
	mergeOrder []Pair // mergeOrder[k] produced id 256+k
	vocab      map[int][]byte

	specials *specialRegistry

	// Byte shuffle permutation for pretrained vocabularies whose single-byte
	// tokens are not in natural byte order. Maps a raw input byte to its
	// token id before chunk encoding. Decoding needs no inverse: vocabulary
	// bytes are stored raw. Nil means identity.
	shuffle *[256]byte

	// Tokenizers built from a pretrained vocabulary source are fixed:
	// Train and Save are rejected, Encode/Decode are unrestricted.
	trainable bool
}

// New returns an empty trainable tokenizer in byte-only mode: no split
// pattern, so the whole input is a single chunk.
func New() *Tokenizer {
	return &Tokenizer{
		merges:    make(map[Pair]int),
		vocab:     newByteVocab(),
		specials:  newSpecialRegistry(),
		trainable: true,
	}
}

// NewWithPattern returns an empty trainable tokenizer that pre-splits text
// with the given regex pattern (regexp2 dialect) so merges never cross
// segment boundaries. See GPT2SplitPattern and GPT4SplitPattern. The model
// format stores the pattern on a single line, so patterns containing
// newlines are rejected; use escapes like \n inside the pattern instead.
func NewWithPattern(pattern string) (*Tokenizer, error) {
	if strings.ContainsAny(pattern, "\r\n") {
		return nil, fmt.Errorf("%w: split pattern contains a newline, which the model format cannot store", ErrInvalidConfig)
	}
	seg, err := newSegmenter(pattern)
	if err != nil {
		return nil, err
	}
	t := New()
	t.pattern = pattern
	t.segmenter = seg
	return t, nil
}

// Pattern returns the split pattern, or the empty string in byte-only mode.
func (t *Tokenizer) Pattern() string { return t.pattern }

// Trainable reports whether this tokenizer supports Train and Save.
// Tokenizers imported from a pretrained vocabulary source are fixed.
func (t *Tokenizer) Trainable() bool { return t.trainable }

// MergeCount returns the number of learned merge rules.
func (t *Tokenizer) MergeCount() int { return len(t.mergeOrder) }

// VocabSize returns the number of byte and merge tokens (256 + merges).
// Special tokens are tracked separately; see SpecialTokens.
func (t *Tokenizer) VocabSize() int { return 256 + len(t.mergeOrder) }

// TokenBytes returns the exact byte sequence for a byte or merge token id.
// Together with VocabSize this makes a trained Tokenizer usable as a
// VocabularySource.
func (t *Tokenizer) TokenBytes(id int) ([]byte, bool) {
	b, ok := t.vocab[id]
	return b, ok
}

// newByteVocab returns the identity table for the 256 base byte tokens.
func newByteVocab() map[int][]byte {
	vocab := make(map[int][]byte, 256)
	for i := 0; i < 256; i++ {
		vocab[i] = []byte{byte(i)}
	}
	return vocab
}

// buildVocab rederives the vocabulary from the byte identity table and the
// ordered merge history. The vocabulary is never trusted from storage.
func (t *Tokenizer) buildVocab() {
	vocab := newByteVocab()
	for k, p := range t.mergeOrder {
		id := 256 + k
		merged := make([]byte, 0, len(vocab[p.A])+len(vocab[p.B]))
		merged = append(merged, vocab[p.A]...)
		merged = append(merged, vocab[p.B]...)
		vocab[id] = merged
	}
	t.vocab = vocab
}
