// ABOUTME: HTTP content source for sections served by a content endpoint
// ABOUTME: Fetches GET {base}/api/pages/{page}/sections as JSON

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPSource fetches sections for one page from a content server
type HTTPSource struct {
	BaseURL string
	Page    string
	Client  *http.Client // Defaults to a client with a 10s timeout
}

// Sections fetches and decodes the page's sections
func (h HTTPSource) Sections(ctx context.Context) ([]Section, error) {
	endpoint, err := url.JoinPath(h.BaseURL, "api", "pages", h.Page, "sections")
	if err != nil {
		return nil, fmt.Errorf("invalid content url %q: %w", h.BaseURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%q: %w", h.Page, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %s", endpoint, resp.Status)
	}

	var sections []Section
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		return nil, fmt.Errorf("failed to decode sections: %w", err)
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("%q: %w", h.Page, ErrNoSections)
	}

	// Positions are authoritative, whatever the server said
	for i := range sections {
		sections[i].Index = i
	}

	return sections, nil
}
