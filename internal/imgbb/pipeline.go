package imgbb

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// imagePattern matches Markdown image syntax ![alt](path).
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
}

// IsImageFile reports whether the path carries a recognized image
// extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ImageReference is one discovered Markdown image reference.
type ImageReference struct {
	Match string // the full matched substring, e.g. ![cat](static/cat.png)
	Alt   string
	Path  string
}

// ExtractImages finds every Markdown image reference in text, in
// document order, in a single pass.
func ExtractImages(text string) []ImageReference {
	matches := imagePattern.FindAllStringSubmatch(text, -1)
	refs := make([]ImageReference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, ImageReference{Match: m[0], Alt: m[1], Path: m[2]})
	}
	return refs
}

// UploadedImage records one successful rehost.
type UploadedImage struct {
	OriginalPath string
	HostedURL    string
	Alt          string
}

// Uploader is the single-file upload boundary, satisfied by *Client.
type Uploader interface {
	Upload(ctx context.Context, path, name string) (string, error)
}

// HostedCache remembers local path→hosted URL mappings across runs so a
// path rehosted in a prior run is never uploaded again. Satisfied by
// *state.Store.
type HostedCache interface {
	HostedURL(path string) (string, bool)
	RecordHostedURL(path, url string) error
}

// Pipeline scans assembled Markdown for local image references, uploads
// each to the hosting service, and rewrites the references to the
// returned URLs. Per-image failures are logged and skipped; the
// document always comes back usable.
type Pipeline struct {
	Uploader Uploader
	// BaseDir anchors relative image paths.
	BaseDir string
	// Cache may be nil; then deduplication only holds within one pass.
	Cache  HostedCache
	Logger *slog.Logger
}

func NewPipeline(uploader Uploader, baseDir string, cache HostedCache, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Uploader: uploader, BaseDir: baseDir, Cache: cache, Logger: logger}
}

// ProcessDocument rehosts every local image referenced in text.
// Already-remote references and non-image paths are left unchanged.
// Uploads run sequentially, one per distinct local path: a path seen
// twice in the document (or remembered in the cache from an earlier
// run) is uploaded once and every literal occurrence of its original
// reference is rewritten to the same hosted URL.
func (p *Pipeline) ProcessDocument(ctx context.Context, text string) (string, []UploadedImage) {
	refs := ExtractImages(text)
	updated := text
	var uploaded []UploadedImage
	seen := make(map[string]string) // local path -> hosted URL, this pass
	done := make(map[string]bool)   // full match text already rewritten

	for _, ref := range refs {
		if done[ref.Match] {
			continue
		}
		if strings.HasPrefix(ref.Path, "http://") || strings.HasPrefix(ref.Path, "https://") {
			p.Logger.Info("skipping already hosted image", "path", ref.Path)
			continue
		}
		if !IsImageFile(ref.Path) {
			p.Logger.Info("skipping non-image reference", "path", ref.Path)
			continue
		}

		hostedURL, ok := seen[ref.Path]
		if !ok && p.Cache != nil {
			hostedURL, ok = p.Cache.HostedURL(ref.Path)
			if ok {
				p.Logger.Info("reusing cached hosted url", "path", ref.Path, "url", hostedURL)
			}
		}

		if !ok {
			absolute := p.resolvePath(ref.Path)
			if _, err := os.Stat(absolute); err != nil {
				p.Logger.Warn("image file not found, reference left as-is", "path", ref.Path, "error", err)
				continue
			}

			base := filepath.Base(ref.Path)
			name := strings.TrimSuffix(base, filepath.Ext(base))

			url, err := p.Uploader.Upload(ctx, absolute, name)
			if err != nil {
				p.Logger.Warn("image upload failed, reference left as-is", "path", ref.Path, "error", err)
				continue
			}
			hostedURL = url

			if p.Cache != nil {
				if err := p.Cache.RecordHostedURL(ref.Path, hostedURL); err != nil {
					p.Logger.Warn("failed to persist hosted url", "path", ref.Path, "error", err)
				}
			}
		}

		seen[ref.Path] = hostedURL
		done[ref.Match] = true
		replacement := "![" + ref.Alt + "](" + hostedURL + ")"
		updated = strings.ReplaceAll(updated, ref.Match, replacement)
		uploaded = append(uploaded, UploadedImage{
			OriginalPath: ref.Path,
			HostedURL:    hostedURL,
			Alt:          ref.Alt,
		})
		p.Logger.Info("image rehosted", "path", ref.Path, "url", hostedURL)
	}

	return updated, uploaded
}

func (p *Pipeline) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}
