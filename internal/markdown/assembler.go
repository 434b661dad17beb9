// Package markdown assembles the bulletin document and renders it to
// HTML for publishing.
package markdown

import "strings"

// hardBreak is the Markdown hard line-break marker: two trailing
// spaces before the newline.
const hardBreak = "  \n"

// Assembler accumulates Markdown fragments between a static header and
// footer. Fragments keep their insertion order; each is terminated
// with a hard line break so consecutive activity lines render as
// separate lines.
type Assembler struct {
	header string
	footer string
	body   strings.Builder

	rehosted    string
	hasRehosted bool
}

func NewAssembler(header, footer string) *Assembler {
	return &Assembler{header: header, footer: footer}
}

// AddFragment appends one Markdown line to the body.
func (a *Assembler) AddFragment(line string) {
	a.body.WriteString(line)
	a.body.WriteString(hardBreak)
}

// Body returns the accumulated fragment text without header or footer.
func (a *Assembler) Body() string {
	return a.body.String()
}

// SetRehosted records the image-rehosted variant of the document. Once
// set, Render returns it instead of re-concatenating, so the hosted
// URLs survive into the published output.
func (a *Assembler) SetRehosted(text string) {
	a.rehosted = text
	a.hasRehosted = true
}

// Render returns the final Markdown document: header, blank-line
// separator, body, blank-line separator, footer. If a rehosted variant
// exists it supersedes the raw concatenation.
func (a *Assembler) Render() string {
	if a.hasRehosted {
		return a.rehosted
	}
	return a.header + "\n\n" + a.body.String() + "\n\n" + a.footer
}
