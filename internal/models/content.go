package models

import (
	"encoding/json"
	"time"
)

// Status gates the visibility of a post or page.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Source tags the provenance of a ContentResult.
type Source string

const (
	SourceCache Source = "cache"
	SourceFresh Source = "fresh"
	SourceNone  Source = "none"
	SourceError Source = "error"
)

// Post is a normalized article. The body is not carried here; it is
// fetched lazily by ID through the workspace client when a single post
// is rendered.
type Post struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Status        Status     `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Page is static, non-chronological content such as "About".
type Page struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	Status        Status    `json:"status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RawRecord is one content item exactly as the workspace returns it,
// prior to normalization. Object declares the record type ("post",
// "page"); anything else is flagged by the normalizer rather than
// silently coerced.
type RawRecord struct {
	Object      string   `json:"object"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	StatusLabel string   `json:"status"`
	PublishedAt string   `json:"published_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// RawBlockTree is the rich-content body of a single page. The payload is
// rendering-framework specific and passed through untouched.
type RawBlockTree struct {
	ID     string          `json:"id"`
	Blocks json.RawMessage `json:"blocks"`
}

// ContentResult is the envelope every consumer receives from the
// ingestion orchestrator.
type ContentResult struct {
	Posts  []Post `json:"posts"`
	Pages  []Page `json:"pages"`
	Source Source `json:"source"`
	Error  string `json:"error,omitempty"`
}

// Published returns true when the post is visible at the given instant.
func (p Post) Published(now time.Time) bool {
	return p.Status == StatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(now)
}
