package feed

import (
	"strings"
	"unicode"
)

// Sanitize flattens freeform upstream text into a single clean line.
// CR/LF and tabs become spaces, other control runes (including NUL) are
// dropped, runs of whitespace collapse to one space, and the ends are
// trimmed. Commit messages and issue titles pass through here before
// they are embedded in Markdown so a crafted message cannot break the
// document structure.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r' || r == '\n' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
