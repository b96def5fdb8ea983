package tokenizer

import (
	"fmt"
	"sort"
)

// VocabularySource is the read-only capability a pretrained-vocabulary
// importer supplies: a dense table of token id to exact byte sequence for
// ids 0..VocabSize()-1. The tokenizer core does not care how the table was
// obtained. A trained *Tokenizer satisfies this interface itself.
type VocabularySource interface {
	VocabSize() int
	TokenBytes(id int) ([]byte, bool)
}

// NewFromSource builds a fixed tokenizer from a pretrained vocabulary
// source, e.g. an externally published mergeable-rank table. The merge table
// is recovered by re-running BPE over each multi-byte token restricted to
// strictly lower ranks, and the byte-shuffle permutation is read off the 256
// single-byte entries (identity tables produce an identity shuffle, which is
// elided). The result encodes and decodes but rejects Train and Save.
func NewFromSource(src VocabularySource, pattern string) (*Tokenizer, error) {
	size := src.VocabSize()
	if size < 256 {
		return nil, fmt.Errorf("%w: vocabulary source holds %d tokens, need at least the 256 bytes", ErrInvalidFormat, size)
	}

	vocab := make(map[int][]byte, size)
	ranks := make(map[string]int, size)
	for id := 0; id < size; id++ {
		b, ok := src.TokenBytes(id)
		if !ok {
			return nil, fmt.Errorf("%w: vocabulary source has no bytes for id %d", ErrInvalidFormat, id)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("%w: vocabulary source maps id %d to empty bytes", ErrInvalidFormat, id)
		}
		owned := make([]byte, len(b))
		copy(owned, b)
		vocab[id] = owned
		if _, dup := ranks[string(owned)]; dup {
			return nil, fmt.Errorf("%w: vocabulary source maps two ids to the same bytes %q", ErrInvalidFormat, owned)
		}
		ranks[string(owned)] = id
	}

	shuffle, err := byteShuffleFromRanks(ranks)
	if err != nil {
		return nil, err
	}

	merges, err := recoverMerges(ranks)
	if err != nil {
		return nil, err
	}
	order := make([]Pair, 0, len(merges))
	for p := range merges {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool { return merges[order[i]] < merges[order[j]] })

	var t *Tokenizer
	if pattern == "" {
		t = New()
	} else {
		t, err = NewWithPattern(pattern)
		if err != nil {
			return nil, err
		}
	}
	t.merges = merges
	t.mergeOrder = order
	// The source's byte sequences already are the concatenations the merge
	// history would rebuild, so they are taken as the vocabulary directly.
	t.vocab = vocab
	t.shuffle = shuffle
	t.trainable = false
	return t, nil
}

// byteShuffleFromRanks derives the byte permutation from the ranks of the
// 256 single-byte tokens. Pretrained GPT-style tables assign bytes ids in a
// scrambled order; raw input bytes must be mapped into that order before
// encoding. Decoding reads raw bytes straight from the vocabulary, so no
// inverse is kept.
func byteShuffleFromRanks(ranks map[string]int) (*[256]byte, error) {
	var shuffle [256]byte
	identity := true
	for i := 0; i < 256; i++ {
		rank, ok := ranks[string([]byte{byte(i)})]
		if !ok {
			return nil, fmt.Errorf("%w: vocabulary source is missing single-byte token 0x%02x", ErrInvalidFormat, i)
		}
		if rank > 255 {
			return nil, fmt.Errorf("%w: single-byte token 0x%02x has rank %d outside the byte range", ErrInvalidFormat, i, rank)
		}
		shuffle[i] = byte(rank)
		if rank != i {
			identity = false
		}
	}
	if identity {
		return nil, nil
	}
	return &shuffle, nil
}

// recoverMerges reconstructs the merge table from a bytes->rank table. For
// every multi-byte token, its bytes are re-encoded with BPE restricted to
// merges of strictly lower rank; a well-formed table always bottoms out at
// exactly two parts, which are that token's constituent pair.
func recoverMerges(ranks map[string]int) (map[Pair]int, error) {
	merges := make(map[Pair]int)
	for token, rank := range ranks {
		if len(token) < 2 {
			continue
		}
		left, right, ok := splitByRank([]byte(token), rank, ranks)
		if !ok {
			return nil, fmt.Errorf("%w: token %q (rank %d) does not decompose into two lower-ranked parts", ErrInvalidFormat, token, rank)
		}
		merges[Pair{A: ranks[string(left)], B: ranks[string(right)]}] = rank
	}
	return merges, nil
}

// splitByRank runs the BPE loop over token's bytes using only merges with
// rank below maxRank, and reports the final two parts.
func splitByRank(token []byte, maxRank int, ranks map[string]int) (left, right []byte, ok bool) {
	parts := make([][]byte, len(token))
	for i := range token {
		parts[i] = token[i : i+1]
	}
	for len(parts) > 2 {
		bestIdx, bestRank := -1, maxRank
		for i := 0; i+1 < len(parts); i++ {
			joined := string(parts[i]) + string(parts[i+1])
			if r, found := ranks[joined]; found && r < bestRank {
				bestIdx, bestRank = i, r
			}
		}
		if bestIdx < 0 {
			return nil, nil, false
		}
		merged := append(append([]byte{}, parts[bestIdx]...), parts[bestIdx+1]...)
		parts = append(parts[:bestIdx], append([][]byte{merged}, parts[bestIdx+2:]...)...)
	}
	if len(parts) != 2 {
		return nil, nil, false
	}
	return parts[0], parts[1], true
}
