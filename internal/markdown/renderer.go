package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// ToHTML converts the assembled Markdown document to HTML with the
// standard renderer. Rendering semantics beyond CommonMark are not
// this package's concern.
func ToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
