// Package template resolves the placeholder tokens supported in the
// static header and footer files: {{randquote}} picks a random quote
// file, {{randimg}} picks a random local image and emits a Markdown
// image reference for the rehosting pipeline to pick up.
package template

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawtals/ghbulletin/internal/imgbb"
)

const (
	tokenRandQuote = "{{randquote}}"
	tokenRandImg   = "{{randimg}}"
)

// Parser substitutes placeholder tokens in static content. Resolution
// failures (missing directory, no eligible files) log and resolve to an
// empty string; template parsing never aborts document assembly.
type Parser struct {
	QuotesDir string
	ImagesDir string
	Logger    *slog.Logger

	// pick chooses an index in [0, n). Overridable in tests.
	pick func(n int) int
}

func NewParser(quotesDir, imagesDir string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		QuotesDir: quotesDir,
		ImagesDir: imagesDir,
		Logger:    logger,
		pick:      rand.Intn,
	}
}

// Parse replaces every occurrence of each recognized token with a
// single resolved value — the sample is drawn once per token per call,
// not re-drawn per occurrence. Text without tokens passes through
// unchanged.
func (p *Parser) Parse(text string) string {
	parsed := text

	if strings.Contains(parsed, tokenRandQuote) {
		quote := p.randomQuote()
		parsed = strings.ReplaceAll(parsed, tokenRandQuote, quote)
	}

	if strings.Contains(parsed, tokenRandImg) {
		img := p.randomImage()
		parsed = strings.ReplaceAll(parsed, tokenRandImg, img)
	}

	return parsed
}

// randomQuote returns the trimmed content of one random file from the
// quotes directory, or "" if nothing is available.
func (p *Parser) randomQuote() string {
	name, ok := p.randomFile(p.QuotesDir, func(string) bool { return true })
	if !ok {
		return ""
	}

	content, err := os.ReadFile(filepath.Join(p.QuotesDir, name))
	if err != nil {
		p.Logger.Warn("quote file unreadable", "dir", p.QuotesDir, "file", name, "error", err)
		return ""
	}
	return strings.TrimSpace(string(content))
}

// randomImage returns a Markdown image reference for one random image
// file from the images directory. The path is the local file path; the
// rehosting pipeline replaces it with a hosted URL downstream.
func (p *Parser) randomImage() string {
	name, ok := p.randomFile(p.ImagesDir, imgbb.IsImageFile)
	if !ok {
		return ""
	}

	path := filepath.Join(p.ImagesDir, name)
	alt := strings.TrimSuffix(name, filepath.Ext(name))
	return fmt.Sprintf("![%s](%s)", alt, path)
}

func (p *Parser) randomFile(dir string, eligible func(name string) bool) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.Logger.Warn("template directory unreadable", "dir", dir, "error", err)
		return "", false
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !eligible(name) {
			continue
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		p.Logger.Warn("no eligible files in template directory", "dir", dir)
		return "", false
	}
	return names[p.pick(len(names))], true
}
