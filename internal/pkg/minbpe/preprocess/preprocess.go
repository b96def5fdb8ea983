// Package preprocess offers opt-in corpus cleanup for training input. The
// tokenizer core never calls it: encode/decode round-trips are exact over
// whatever bytes the caller provides.
package preprocess

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize canonicalizes a training corpus: Unicode NFC so visually
// identical sequences count as the same pairs, newlines folded to LF, and
// BOM / zero-width space characters stripped.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\uFEFF", "")
	text = strings.ReplaceAll(text, "\u200B", "")
	return text
}
