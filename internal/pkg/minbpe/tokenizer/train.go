package tokenizer

import (
	"cmp"
	"fmt"

	binaryheap "github.com/emirpasic/gods/v2/trees/binaryheap"
)

// TrainProgress describes one completed merge iteration. It is purely
// observational; the trainer never reads anything back from the callback.
type TrainProgress struct {
	Iteration int // 1-based
	Total     int // merges requested
	Pair      Pair
	NewID     int
	Token     string // merged token rendered for display
	Count     int    // occurrences of Pair when it was chosen
}

// Train derives the merge table from text, learning vocabSize-256 merges.
// Each iteration counts adjacent pairs over all chunk sequences, picks the
// most frequent pair (ties broken by the lexicographic order on the pair, so
// training is reproducible across runs and platforms), assigns it the next
// id and rewrites every chunk. Training stops early if the corpus runs out
// of pairs; ending with fewer merges than requested is not an error.
//
// The merge table and vocabulary are swapped in only after the loop
// finishes, so a tokenizer is never observed with a partially-built model.
// progress may be nil.
func (t *Tokenizer) Train(text string, vocabSize int, progress func(TrainProgress)) error {
	if !t.trainable {
		return fmt.Errorf("%w: tokenizer is fixed, training is not supported", ErrInvalidConfig)
	}
	if vocabSize < 256 {
		return fmt.Errorf("%w: vocab size %d is below the 256 base byte tokens", ErrInvalidConfig, vocabSize)
	}
	numMerges := vocabSize - 256
	for _, sp := range t.specials.ordered {
		if sp.ID < 256+numMerges {
			return fmt.Errorf("%w: special token %q id %d lies inside the merge id range [256,%d)",
				ErrInvalidConfig, sp.Literal, sp.ID, 256+numMerges)
		}
	}

	// One id sequence per pre-split chunk; merges never cross chunk
	// boundaries.
	var chunks [][]int
	for seg := range t.segmenter.segments(text) {
		b := []byte(seg)
		ids := make([]int, len(b))
		for i, bb := range b {
			ids[i] = int(bb)
		}
		chunks = append(chunks, ids)
	}

	merges := make(map[Pair]int, numMerges)
	order := make([]Pair, 0, numMerges)
	vocab := newByteVocab()

	for k := 0; k < numMerges; k++ {
		stats := make(map[Pair]int)
		for _, ids := range chunks {
			countPairs(stats, ids)
		}
		best, count, ok := topPair(stats)
		if !ok {
			break
		}

		newID := 256 + k
		for i, ids := range chunks {
			chunks[i] = mergePair(ids, best, newID)
		}
		merges[best] = newID
		order = append(order, best)

		merged := make([]byte, 0, len(vocab[best.A])+len(vocab[best.B]))
		merged = append(merged, vocab[best.A]...)
		merged = append(merged, vocab[best.B]...)
		vocab[newID] = merged

		if progress != nil {
			progress(TrainProgress{
				Iteration: k + 1,
				Total:     numMerges,
				Pair:      best,
				NewID:     newID,
				Token:     RenderToken(merged),
				Count:     count,
			})
		}
	}

	t.merges = merges
	t.mergeOrder = order
	t.vocab = vocab
	return nil
}

type countedPair struct {
	pair  Pair
	count int
}

// topPair returns the most frequent pair, preferring the lexicographically
// smaller pair on equal counts. Reports false when stats is empty.
func topPair(stats map[Pair]int) (Pair, int, bool) {
	if len(stats) == 0 {
		return Pair{}, 0, false
	}
	h := binaryheap.NewWith(func(x, y countedPair) int {
		if x.count != y.count {
			return cmp.Compare(y.count, x.count)
		}
		if x.pair.less(y.pair) {
			return -1
		}
		return 1
	})
	for p, c := range stats {
		h.Push(countedPair{pair: p, count: c})
	}
	top, _ := h.Pop()
	return top.pair, top.count, true
}
