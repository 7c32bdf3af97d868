// Package fs provides file-based output for page snapshots.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/scrape"
)

// URLToPath converts a page URL to a relative file path with the given
// extension (including the dot).
// Example: https://example.com/docs/api/users → docs/api/users.md
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", scrape.Errorf(scrape.EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	path := u.Path

	// Handle root or trailing slash → index file
	if path == "" || path == "/" {
		return "index" + ext, nil
	}

	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Trailing slash becomes an index file in that directory
	if strings.HasSuffix(path, "/") {
		path += "index" + ext
	} else {
		path += ext
	}

	// Reject paths that would escape the output directory
	if !filepath.IsLocal(filepath.FromSlash(path)) {
		return "", scrape.Errorf(scrape.EINVALID, "path traversal in URL %q", rawURL)
	}

	return path, nil
}

// FormatPage wraps rendered page content in YAML frontmatter.
func FormatPage(page *scrape.Page, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(page.Title)
	b.WriteString("\ncrawled: ")
	b.WriteString(page.FetchedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(body)
	return b.String()
}

// RenderFunc produces the file content for a page snapshot.
type RenderFunc func(page *scrape.Page) (string, error)

// Ensure Writer implements scrape.PageWriter at compile time.
var _ scrape.PageWriter = (*Writer)(nil)

// Writer writes pages as files with atomic update semantics.
// Pages are saved to a temporary directory, then moved into place on
// Commit, so an interrupted batch never leaves a half-written output
// directory.
type Writer struct {
	baseDir string
	name    string
	ext     string
	render  RenderFunc
}

// NewWriter creates a new Writer.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
// ext is the file extension including the dot. A nil render writes the
// raw page HTML.
func NewWriter(baseDir, name, ext string, render RenderFunc) *Writer {
	if render == nil {
		render = func(page *scrape.Page) (string, error) {
			return page.HTML, nil
		}
	}
	return &Writer{
		baseDir: baseDir,
		name:    name,
		ext:     ext,
		render:  render,
	}
}

func (w *Writer) tempDir() string {
	return filepath.Join(w.baseDir, w.name+".tmp")
}

func (w *Writer) finalDir() string {
	return filepath.Join(w.baseDir, w.name)
}

// Dir returns the final output directory.
func (w *Writer) Dir() string {
	return w.finalDir()
}

// Save renders a page and writes it below the temporary directory.
func (w *Writer) Save(ctx context.Context, page *scrape.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}

	relPath, err := URLToPath(page.URL, w.ext)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.tempDir(), relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content, err := w.render(page)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit atomically replaces the output directory with the saved pages.
func (w *Writer) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(w.finalDir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	return os.Rename(w.tempDir(), w.finalDir())
}

// Abort discards any saved pages.
func (w *Writer) Abort() error {
	return os.RemoveAll(w.tempDir())
}
