// ABOUTME: Local markdown sources: a single file or a directory of pages
// ABOUTME: Directory loading parses files concurrently on the worker pool

package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"scrollspy/pool"
)

// FileSource reads sections from one markdown file
type FileSource struct {
	Path string
}

// Sections parses the file. The context is only checked before reading.
func (f FileSource) Sections(ctx context.Context) ([]Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return LoadFile(f.Path)
}

// LoadFile parses a markdown file into sections
func LoadFile(path string) ([]Section, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ParseMarkdown(file, path)
}

// LoadPage parses a markdown file into a page named after the file
func LoadPage(path string) (Page, error) {
	sections, err := LoadFile(path)
	if err != nil {
		return Page{}, err
	}

	slug := docTitle(path)
	title := slug
	if sections[0].Level > 0 {
		title = sections[0].Title
	}

	return Page{Slug: slug, Title: title, Sections: sections}, nil
}

// markdownGlob matches markdown files at any depth
const markdownGlob = "**/*.{md,markdown}"

// LoadDir parses every markdown file under dir, sorted by slug. Nested files get slugs
// joined with dashes ("guides/tig.md" becomes "guides-tig").
// Files that fail to parse are reported together; pages that parsed are still returned.
func LoadDir(dir string, workers int) ([]Page, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), markdownGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	pages := make([]Page, len(matches))
	errs := make([]error, len(matches))

	wp := pool.NewWorkerPool(workers, len(matches))
	for i, rel := range matches {
		wp.Submit(func() {
			pages[i], errs[i] = LoadPage(filepath.Join(dir, filepath.FromSlash(rel)))
			if errs[i] == nil {
				pages[i].Slug = pageSlug(rel)
			}
		})
	}
	wp.Wait()
	wp.Close()

	loaded := pages[:0]
	for i := range pages {
		if errs[i] == nil {
			loaded = append(loaded, pages[i])
		}
	}

	sort.Slice(loaded, func(a, b int) bool { return loaded[a].Slug < loaded[b].Slug })

	return loaded, errors.Join(errs...)
}

// pageSlug turns a slash-separated relative path into a URL-safe page slug
func pageSlug(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.ReplaceAll(rel, "/", "-")
}

// FindPage returns the page with the given slug
func FindPage(pages []Page, slug string) (Page, error) {
	for _, p := range pages {
		if p.Slug == slug {
			return p, nil
		}
	}

	return Page{}, fmt.Errorf("%q: %w", slug, ErrNotFound)
}
