package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// modelVersion is the only supported model file version. Any other first
// line fails the load.
const modelVersion = "minbpe v1"

// Save persists the model to <prefix>.model and writes a human-readable
// vocabulary listing to <prefix>.vocab. The .model file is the ground truth
// for loading; the .vocab file is diagnostic only and is never read back.
// Fixed tokenizers cannot be saved.
func (t *Tokenizer) Save(prefix string) error {
	if !t.trainable {
		return fmt.Errorf("%w: tokenizer is fixed, saving is not supported", ErrInvalidConfig)
	}
	if err := t.saveModel(prefix + ".model"); err != nil {
		return err
	}
	return t.saveVocab(prefix + ".vocab")
}

// saveModel writes the line-oriented v1 layout: version, pattern (possibly
// empty), special-token count, one "literal id" line per special token in
// registration order, then one "a b" line per merge in training order. The
// merged id is implicit: position k reconstructs to id 256+k.
func (t *Tokenizer) saveModel(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, modelVersion)
	fmt.Fprintln(w, t.pattern)
	fmt.Fprintln(w, len(t.specials.ordered))
	for _, sp := range t.specials.ordered {
		fmt.Fprintf(w, "%s %d\n", sp.Literal, sp.ID)
	}
	for _, p := range t.mergeOrder {
		fmt.Fprintf(w, "%d %d\n", p.A, p.B)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

func (t *Tokenizer) saveVocab(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create vocab file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := t.WriteVocab(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write vocab file: %w", err)
	}
	return nil
}

// WriteVocab writes the vocabulary listing: every token rendered as
// printable text, annotated with its constituent pair when it originated
// from a merge, ids ascending. Special tokens are listed after their id like
// any other entry.
func (t *Tokenizer) WriteVocab(w io.Writer) error {
	inverted := make(map[int]Pair, len(t.mergeOrder))
	for k, p := range t.mergeOrder {
		inverted[256+k] = p
	}

	ids := make([]int, 0, len(t.vocab)+len(t.specials.ordered))
	for id := range t.vocab {
		ids = append(ids, id)
	}
	for _, sp := range t.specials.ordered {
		ids = append(ids, sp.ID)
	}
	sort.Ints(ids)

	for _, id := range ids {
		var line string
		if lit, ok := t.specials.literalOf(id); ok {
			line = fmt.Sprintf("[%s] %d", RenderToken([]byte(lit)), id)
		} else if p, ok := inverted[id]; ok {
			line = fmt.Sprintf("[%s][%s] -> [%s] %d",
				RenderToken(t.vocab[p.A]), RenderToken(t.vocab[p.B]), RenderToken(t.vocab[id]), id)
		} else {
			line = fmt.Sprintf("[%s] %d", RenderToken(t.vocab[id]), id)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write vocab entry %d: %w", id, err)
		}
	}
	return nil
}

// LoadModel reads a .model file written by Save and returns a fresh
// tokenizer. Merge ids are reassigned positionally from 256 in file order
// and the vocabulary is rebuilt from scratch; nothing in the file is taken
// as the vocabulary's ground truth. A failed load never yields a partially
// initialized tokenizer.
func LoadModel(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	readLine := func() (string, bool) {
		if sc.Scan() {
			return sc.Text(), true
		}
		return "", false
	}

	version, ok := readLine()
	if !ok || version != modelVersion {
		return nil, fmt.Errorf("%w: unsupported version line %q", ErrInvalidFormat, version)
	}
	pattern, ok := readLine()
	if !ok {
		return nil, fmt.Errorf("%w: missing pattern line", ErrInvalidFormat)
	}
	countLine, ok := readLine()
	if !ok {
		return nil, fmt.Errorf("%w: missing special-token count", ErrInvalidFormat)
	}
	numSpecial, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil || numSpecial < 0 {
		return nil, fmt.Errorf("%w: bad special-token count %q", ErrInvalidFormat, countLine)
	}

	specials := make([]SpecialToken, 0, numSpecial)
	for i := 0; i < numSpecial; i++ {
		line, ok := readLine()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d special tokens, file ended after %d", ErrInvalidFormat, numSpecial, i)
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad special token line %q", ErrInvalidFormat, line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad special token id in %q", ErrInvalidFormat, line)
		}
		specials = append(specials, SpecialToken{Literal: fields[0], ID: id})
	}

	var order []Pair
	for {
		line, ok := readLine()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: bad merge line %q", ErrInvalidFormat, line)
		}
		a, errA := strconv.Atoi(fields[0])
		b, errB := strconv.Atoi(fields[1])
		if errA != nil || errB != nil {
			return nil, fmt.Errorf("%w: bad merge line %q", ErrInvalidFormat, line)
		}
		// A merge may only reference ids that existed before it was
		// learned: the 256 byte ids plus merges earlier in the file.
		limit := 256 + len(order)
		if a < 0 || b < 0 || a >= limit || b >= limit {
			return nil, fmt.Errorf("%w: merge %q references id outside [0,%d)", ErrInvalidFormat, line, limit)
		}
		order = append(order, Pair{A: a, B: b})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var t *Tokenizer
	if pattern == "" {
		t = New()
	} else {
		t, err = NewWithPattern(pattern)
		if err != nil {
			return nil, err
		}
	}
	t.mergeOrder = order
	t.merges = make(map[Pair]int, len(order))
	for k, p := range order {
		t.merges[p] = 256 + k
	}
	t.buildVocab()
	if err := t.RegisterSpecialTokens(specials); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return t, nil
}
