// ABOUTME: Section content model and the sources that produce it
// ABOUTME: Sections are ordered and immutable once handed to an engine

// Package content loads ordered sections from markdown files, directories, and a content endpoint.
package content

import (
	"context"
	"errors"

	"scrollspy/engine"
)

// Errors returned by content sources
var (
	ErrNoSections = errors.New("content: document has no sections")
	ErrNotFound   = errors.New("content: page not found")
)

// Section is one ordered content unit. The engine only ever sees its Index and ID.
type Section struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"` // Heading level, 0 for the intro section
	Body  string `json:"body"`
}

// Key returns the identity the engine tracks
func (s Section) Key() engine.Section {
	return engine.Section{Index: s.Index, ID: s.ID}
}

// Keys returns engine identities for sections, in order
func Keys(sections []Section) []engine.Section {
	keys := make([]engine.Section, len(sections))
	for i, s := range sections {
		keys[i] = s.Key()
	}

	return keys
}

// Page is a named document made of sections
type Page struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections,omitempty"`
}

// Source produces the sections of one document
type Source interface {
	Sections(ctx context.Context) ([]Section, error)
}
