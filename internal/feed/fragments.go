package feed

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func headingLabel(kind Kind) string {
	switch kind {
	case KindCommit:
		return "Recent Commits"
	case KindIssue:
		return "Recent Issues"
	case KindPullRequest:
		return "Recent Pull Requests"
	default:
		return "Recent Activity"
	}
}

func linkLabel(kind Kind) string {
	switch kind {
	case KindCommit:
		return "view commit"
	case KindIssue:
		return "view issue"
	case KindPullRequest:
		return "view pull request"
	default:
		return "view"
	}
}

// Fragments renders items of one kind into Markdown lines ready for the
// document assembler. Each item becomes a heading line with the
// sanitized title and repository, a UTC date/time line, and a link.
// When items is empty the section heading is suppressed too, so a user
// with no new activity never leaves an empty heading in the bulletin.
func Fragments(user string, kind Kind, items []Item) []string {
	if len(items) == 0 {
		return nil
	}

	lines := make([]string, 0, 1+len(items)*3)
	caser := cases.Title(language.English)
	lines = append(lines, fmt.Sprintf("## %s's %s", caser.String(user), headingLabel(kind)))

	for _, item := range items {
		title := Sanitize(item.Title)
		repo := Sanitize(item.Repository)
		lines = append(lines,
			fmt.Sprintf("### %s at %s", title, repo),
			fmt.Sprintf("%s at %s UTC", item.Time.UTC().Format("2006-01-02"), item.Time.UTC().Format("15:04:05")),
			fmt.Sprintf("[%s](%s)", linkLabel(kind), item.URL),
		)
	}

	return lines
}
