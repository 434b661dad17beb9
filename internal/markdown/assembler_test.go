package markdown

import (
	"strings"
	"testing"
)

func TestRenderEmptyBody(t *testing.T) {
	t.Parallel()

	a := NewAssembler("H", "F")
	if got := a.Render(); got != "H\n\n\n\nF" {
		t.Fatalf("empty-body render: got %q", got)
	}
}

func TestAddFragmentAppendsHardBreak(t *testing.T) {
	t.Parallel()

	a := NewAssembler("", "")
	a.AddFragment("## heading")
	a.AddFragment("some line")

	if got := a.Body(); got != "## heading  \nsome line  \n" {
		t.Fatalf("body: got %q", got)
	}
}

func TestRenderOrdersHeaderBodyFooter(t *testing.T) {
	t.Parallel()

	a := NewAssembler("header", "footer")
	a.AddFragment("middle")

	got := a.Render()
	hi := strings.Index(got, "header")
	mi := strings.Index(got, "middle")
	fi := strings.Index(got, "footer")
	if hi < 0 || mi < 0 || fi < 0 || !(hi < mi && mi < fi) {
		t.Fatalf("section order wrong: %q", got)
	}
}

func TestRenderPrefersRehostedVariant(t *testing.T) {
	t.Parallel()

	a := NewAssembler("H", "F")
	a.AddFragment("![cat](cat.png)")

	raw := a.Render()
	if !strings.Contains(raw, "cat.png") {
		t.Fatalf("raw render missing local reference: %q", raw)
	}

	a.SetRehosted(strings.ReplaceAll(raw, "cat.png", "https://i.ibb.co/cat.png"))
	final := a.Render()
	if strings.Contains(final, "](cat.png)") {
		t.Fatalf("rehosted variant not preferred: %q", final)
	}
}

func TestToHTML(t *testing.T) {
	t.Parallel()

	html, err := ToHTML("## Recent Commits\n\nhello **world**")
	if err != nil {
		t.Fatalf("ToHTML failed: %v", err)
	}
	if !strings.Contains(html, "<h2>") || !strings.Contains(html, "<strong>world</strong>") {
		t.Fatalf("unexpected html: %q", html)
	}
}

func TestToHTMLHardBreaks(t *testing.T) {
	t.Parallel()

	html, err := ToHTML("line one  \nline two  \n")
	if err != nil {
		t.Fatalf("ToHTML failed: %v", err)
	}
	if !strings.Contains(html, "<br") {
		t.Fatalf("two-space line break not rendered: %q", html)
	}
}
