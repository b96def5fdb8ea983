package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// RenderToken renders token bytes as printable text for diagnostics and the
// vocabulary inspection file. Control characters are escaped as \uXXXX so a
// token never spills across lines; bytes that are not valid UTF-8 render as
// the replacement character, which is acceptable for a file that is never
// read back.
func RenderToken(token []byte) string {
	var sb strings.Builder
	for _, r := range string(token) {
		if unicode.IsControl(r) {
			fmt.Fprintf(&sb, "\\u%04x", r)
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
