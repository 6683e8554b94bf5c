package contentsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrollspy/content"
)

func testPages() []content.Page {
	return []content.Page{
		{
			Slug:  "guide",
			Title: "Guide",
			Sections: []content.Section{
				{Index: 0, ID: "intro", Title: "Intro", Body: "hello"},
				{Index: 1, ID: "usage", Title: "Usage", Level: 2, Body: "run it"},
			},
		},
	}
}

func TestHealth(t *testing.T) {
	var logs bytes.Buffer
	srv := New(Config{Logger: log.New(&logs, "", 0)}, NewLibrary(nil), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "/health")
}

func TestListPagesOmitsSections(t *testing.T) {
	srv := New(Config{}, NewLibrary(testPages()), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var pages []content.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, "guide", pages[0].Slug)
	assert.Empty(t, pages[0].Sections)
}

func TestSectionsRoute(t *testing.T) {
	lib := NewLibrary(testPages())
	srv := New(Config{}, lib, nil)

	tests := []struct {
		path string
		code int
	}{
		{"/api/pages/guide/sections", http.StatusOK},
		{"/api/pages/nope/sections", http.StatusNotFound},
		{"/api/pages/guide", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusNotFound && rec.Header().Get("Content-Type") == "application/json" {
				assert.JSONEq(t, `{"error":"page not found"}`, rec.Body.String())
			}
		})
	}
}

func TestHTTPSourceRoundTrip(t *testing.T) {
	lib := NewLibrary(testPages())
	ts := httptest.NewServer(New(Config{AllowAll: true}, lib, nil).Handler())
	defer ts.Close()

	sections, err := content.HTTPSource{BaseURL: ts.URL, Page: "guide"}.Sections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "usage", sections[1].ID)
	assert.Equal(t, "run it", sections[1].Body)

	lib.Replace(nil)
	_, err = content.HTTPSource{BaseURL: ts.URL, Page: "guide"}.Sections(context.Background())
	assert.ErrorIs(t, err, content.ErrNotFound)
}
