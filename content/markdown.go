// ABOUTME: Markdown section parser built on goldmark
// ABOUTME: Splits a document into sections at its shallowest heading level

package content

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown reads a markdown document and splits it into sections.
// Every heading at the shallowest level present starts a section; deeper headings stay in
// the body. Text before the first such heading becomes an intro section titled after name.
func ParseMarkdown(r io.Reader, name string) ([]Section, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	splitLevel := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && (splitLevel == 0 || h.Level < splitLevel) {
			splitLevel = h.Level
		}
	}

	var (
		sections []Section
		body     []string
	)

	intro := Section{Title: docTitle(name)}
	current := &intro

	flush := func() {
		current.Body = strings.TrimSpace(strings.Join(body, "\n\n"))
		body = body[:0]

		// Intro only survives if it carries text
		if current == &intro && current.Body == "" {
			return
		}
		sections = append(sections, *current)
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == splitLevel {
			flush()
			current = &Section{Title: inlineText(h, src), Level: h.Level}

			continue
		}

		if t := blockText(n, src); t != "" {
			body = append(body, t)
		}
	}
	flush()

	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSections)
	}

	assignIDs(sections)

	return sections, nil
}

// assignIDs sets positional indexes and unique slug IDs
func assignIDs(sections []Section) {
	used := make(map[string]bool, len(sections))
	next := make(map[string]int, len(sections)) // Next suffix to try per base slug

	for i := range sections {
		sections[i].Index = i

		base := Slugify(sections[i].Title)
		if base == "" {
			base = "section"
		}

		id := base
		for n := max(next[base], 2); used[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
			next[base] = n + 1
		}

		used[id] = true
		sections[i].ID = id
	}
}

// Slugify lowercases s and joins its letter/digit runs with dashes
func Slugify(s string) string {
	var b strings.Builder

	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		} else {
			dash = true
		}
	}

	return b.String()
}

func docTitle(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// blockText renders a block node back to plain text, keeping list and code structure
func blockText(n ast.Node, src []byte) string {
	switch node := n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return strings.TrimRight(rawLines(node, src), "\n")
	case *ast.HTMLBlock:
		return ""
	case *ast.ThematicBreak:
		return "---"
	case *ast.Heading:
		return strings.Repeat("#", node.Level) + " " + inlineText(node, src)
	case *ast.List:
		var items []string

		i := node.Start
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			marker := "-"
			if node.IsOrdered() {
				marker = strconv.Itoa(i) + "."
				i++
			}
			items = append(items, marker+" "+blockText(c, src))
		}

		return strings.Join(items, "\n")
	case *ast.Blockquote:
		inner := childBlocks(node, src, "\n\n")
		return "> " + strings.ReplaceAll(inner, "\n", "\n> ")
	}

	if first := n.FirstChild(); first != nil && first.Type() == ast.TypeBlock {
		return childBlocks(n, src, "\n")
	}

	return inlineText(n, src)
}

func childBlocks(n ast.Node, src []byte, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, sep)
}

// inlineText concatenates the text of n's inline descendants
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder

	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				b.Write(node.Segment.Value(src))
				if node.HardLineBreak() {
					b.WriteByte('\n')
				} else if node.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(node.Value)
			case *ast.AutoLink:
				b.Write(node.Label(src))
			case *ast.RawHTML:
				// Dropped
			default:
				walk(c)
			}
		}
	}
	walk(n)

	return strings.TrimSpace(b.String())
}

func rawLines(n ast.Node, src []byte) string {
	var b strings.Builder

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(src))
	}

	return b.String()
}
