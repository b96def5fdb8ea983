package tokenizer

import (
	"bytes"
	"fmt"
)

// Decode maps token ids back to text. Each id is resolved against the
// vocabulary first, then against the special-token registry; an id found in
// neither aborts the whole decode with ErrUnknownTokenID rather than
// substituting a placeholder.
//
// The concatenated bytes are returned as a Go string without UTF-8
// validation: strings carry arbitrary bytes, so decode(encode(t)) == t holds
// byte-for-byte, and decoding a partial multi-byte token in isolation yields
// exactly its bytes.
func (t *Tokenizer) Decode(ids []int) (string, error) {
	var buf bytes.Buffer
	for _, id := range ids {
		if b, ok := t.vocab[id]; ok {
			// Vocabulary bytes are always raw, even for shuffled
			// pretrained models; the shuffle only affects the id space.
			buf.Write(b)
		} else if lit, ok := t.specials.literalOf(id); ok {
			buf.WriteString(lit)
		} else {
			return "", fmt.Errorf("%w: %d", ErrUnknownTokenID, id)
		}
	}
	return buf.String(), nil
}
