package tokenizer

import (
	"cmp"
	"strings"

	binaryheap "github.com/emirpasic/gods/v2/trees/binaryheap"
)

type rankedPair struct {
	pair Pair
	rank int
}

// encodeChunk byte-pair encodes the raw bytes of a single segment. The
// sequence starts as one id per byte (after the optional byte shuffle);
// each pass selects the present pair with the lowest rank in the merge
// table and applies it everywhere. Merge ranks are unique by construction,
// so no tie-break is needed here; applying the lowest rank first replays
// the training order exactly.
func (t *Tokenizer) encodeChunk(chunk []byte) []int {
	ids := make([]int, len(chunk))
	for i, b := range chunk {
		if t.shuffle != nil {
			b = t.shuffle[b]
		}
		ids[i] = int(b)
	}

	for len(ids) >= 2 {
		// Counts are irrelevant at encode time; only the set of present
		// pairs matters.
		present := countPairs(nil, ids)
		h := binaryheap.NewWith(func(x, y rankedPair) int {
			return cmp.Compare(x.rank, y.rank)
		})
		for p := range present {
			if rank, ok := t.merges[p]; ok {
				h.Push(rankedPair{pair: p, rank: rank})
			}
		}
		best, ok := h.Pop()
		if !ok {
			break
		}
		// The merge table maps each pair to its assigned id, which is also
		// its rank.
		ids = mergePair(ids, best.pair, best.rank)
	}
	return ids
}

// EncodeOrdinary encodes text that contains no special tokens, routing each
// segment of the split pattern through chunk encoding independently.
func (t *Tokenizer) EncodeOrdinary(text string) []int {
	var ids []int
	for seg := range t.segmenter.segments(text) {
		ids = append(ids, t.encodeChunk([]byte(seg))...)
	}
	return ids
}

// Encode converts text to token ids. Registered special tokens are handled
// according to policy: active specials are matched against the raw text
// first and emit their reserved id directly; the ordinary text between them
// goes through EncodeOrdinary.
func (t *Tokenizer) Encode(text string, policy SpecialsPolicy) ([]int, error) {
	active, err := t.activeSpecials(policy, text)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return t.EncodeOrdinary(text), nil
	}

	var ids []int
	for _, frag := range splitOnSpecials(text, active) {
		if frag.special {
			ids = append(ids, frag.id)
		} else {
			ids = append(ids, t.EncodeOrdinary(frag.text)...)
		}
	}
	return ids, nil
}

// fragment is a run of ordinary text or a single matched special token.
type fragment struct {
	text    string
	special bool
	id      int
}

// splitOnSpecials carves text into ordinary runs and special-token matches,
// preserving original order. Each special literal is located with a plain
// string scan; earlier-registered specials take precedence where literals
// overlap.
func splitOnSpecials(text string, specials []SpecialToken) []fragment {
	frags := []fragment{{text: text}}
	for _, sp := range specials {
		next := make([]fragment, 0, len(frags))
		for _, f := range frags {
			if f.special {
				next = append(next, f)
				continue
			}
			rest := f.text
			for {
				i := strings.Index(rest, sp.Literal)
				if i < 0 {
					break
				}
				if i > 0 {
					next = append(next, fragment{text: rest[:i]})
				}
				next = append(next, fragment{text: sp.Literal, special: true, id: sp.ID})
				rest = rest[i+len(sp.Literal):]
			}
			if rest != "" {
				next = append(next, fragment{text: rest})
			}
		}
		frags = next
	}
	return frags
}
