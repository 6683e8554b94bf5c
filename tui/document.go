// ABOUTME: Document layout for the reader viewport
// ABOUTME: Renders sections to lines and records where each section starts

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scrollspy/content"
)

// Document is a laid-out list of sections
type Document struct {
	Lines  []string
	Starts []int // First line of each section
}

// LayoutDocument renders sections at width. Each section is its heading, a blank line,
// the wrapped body and a trailing blank line.
func LayoutDocument(sections []content.Section, width int) Document {
	if width < minViewportWidth {
		width = minViewportWidth
	}

	heading := headingStyle.Width(width)
	body := lipgloss.NewStyle().Width(width)

	var doc Document

	for _, s := range sections {
		doc.Starts = append(doc.Starts, len(doc.Lines))

		title := s.Title
		if s.Level > 0 {
			title = strings.Repeat("#", s.Level) + " " + title
		}

		doc.Lines = append(doc.Lines, strings.Split(heading.Render(title), "\n")...)
		doc.Lines = append(doc.Lines, "")

		if s.Body != "" {
			doc.Lines = append(doc.Lines, strings.Split(body.Render(s.Body), "\n")...)
			doc.Lines = append(doc.Lines, "")
		}
	}

	return doc
}

// Content joins the lines for viewport.SetContent
func (d Document) Content() string {
	return strings.Join(d.Lines, "\n")
}

// Len returns the number of lines
func (d Document) Len() int {
	return len(d.Lines)
}

// SectionAt returns the section containing line
func (d Document) SectionAt(line int) int {
	idx := 0
	for i, start := range d.Starts {
		if start > line {
			break
		}
		idx = i
	}

	return idx
}
