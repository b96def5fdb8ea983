package tokenizer

// Pair is an ordered pair of adjacent token ids. It is a fixed-size struct
// so it can be used directly as a map key, both for frequency counting and
// as a merge-rule key.
type Pair struct {
	A int
	B int
}

// less is the fixed total order over pairs used to break frequency ties
// during training: lexicographic on (A, B).
func (p Pair) less(o Pair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

// countPairs accumulates adjacent-pair counts from ids into stats and
// returns the map. Pass the same map across calls to aggregate over many
// chunk sequences; pairs never span a sequence boundary. A nil stats
// allocates a fresh map. Sequences shorter than 2 contribute nothing.
func countPairs(stats map[Pair]int, ids []int) map[Pair]int {
	if stats == nil {
		stats = make(map[Pair]int)
	}
	for i := 0; i+1 < len(ids); i++ {
		stats[Pair{ids[i], ids[i+1]}]++
	}
	return stats
}

// mergePair returns a new sequence with every non-overlapping left-to-right
// occurrence of pair collapsed into newID. The scan is greedy: on a match
// the cursor advances past both consumed elements, so [X,X,X] with pair
// (X,X) yields [newID,X].
func mergePair(ids []int, pair Pair, newID int) []int {
	out := make([]int, 0, len(ids))
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == pair.A && ids[i+1] == pair.B {
			out = append(out, newID)
			i += 2
		} else {
			out = append(out, ids[i])
			i++
		}
	}
	return out
}
