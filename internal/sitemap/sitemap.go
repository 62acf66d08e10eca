// Package sitemap renders the published-post URL set. Ingestion
// degradation ("none"/"error") yields an empty but valid document, never
// a failed request.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/hferrand/inkstream/internal/models"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Build renders the sitemap for published posts only, preserving the
// canonical reverse-chronological order of the input.
func Build(posts []models.Post, baseURL string) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]urlEntry, 0, len(posts)+1),
	}

	if base != "" {
		set.URLs = append(set.URLs, urlEntry{Loc: base + "/"})
	}

	for _, p := range posts {
		entry := urlEntry{Loc: fmt.Sprintf("%s/posts/%s", base, p.Slug)}
		if p.PublishedAt != nil {
			entry.LastMod = p.PublishedAt.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, entry)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
