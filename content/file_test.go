package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "# Alpha\n\ntext\n")

	sections, err := FileSource{Path: path}.Sections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "alpha", sections[0].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileSource{Path: path}.Sections(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = FileSource{Path: filepath.Join(dir, "missing.md")}.Sections(context.Background())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "welding.md", "# Welding Basics\n\nsparks\n\n## Gear\n\nmask\n")
	writeFile(t, dir, "cutting.markdown", "intro only\n")
	writeFile(t, dir, "notes.txt", "# ignored\n")
	writeFile(t, dir, "blank.md", "\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "guides"), 0o755))
	writeFile(t, filepath.Join(dir, "guides"), "tig.md", "# TIG\n\narc\n")

	pages, err := LoadDir(dir, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSections)

	require.Len(t, pages, 3)
	assert.Equal(t, "cutting", pages[0].Slug)
	assert.Equal(t, "cutting", pages[0].Title)
	assert.Equal(t, "guides-tig", pages[1].Slug)
	assert.Equal(t, "TIG", pages[1].Title)
	assert.Equal(t, "welding", pages[2].Slug)
	assert.Equal(t, "Welding Basics", pages[2].Title)
	assert.Len(t, pages[2].Sections, 1)

	p, err := FindPage(pages, "welding")
	require.NoError(t, err)
	assert.Equal(t, "Welding Basics", p.Title)

	_, err = FindPage(pages, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDirEmpty(t *testing.T) {
	pages, err := LoadDir(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPageSlug(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"guide.md", "guide"},
		{"a/b/c.markdown", "a-b-c"},
		{"v1.2.md", "v1.2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pageSlug(tt.rel))
	}
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), 1)
	assert.Error(t, err)
}
