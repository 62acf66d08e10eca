// Package feed renders the RSS document for the published posts. A
// degraded ingestion result produces a valid feed with zero items.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/hferrand/inkstream/internal/models"
)

// Options describes the site the feed belongs to.
type Options struct {
	Title       string
	Description string
	BaseURL     string
}

// Build renders published posts, already in reverse-chronological
// order, as RSS 2.0.
func Build(posts []models.Post, opts Options) (string, error) {
	base := strings.TrimRight(opts.BaseURL, "/")

	f := &feeds.Feed{
		Title:       opts.Title,
		Link:        &feeds.Link{Href: base + "/"},
		Description: opts.Description,
		Updated:     latest(posts),
	}

	for _, p := range posts {
		item := &feeds.Item{
			Id:          p.ID,
			Title:       p.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/posts/%s", base, p.Slug)},
			Description: p.Summary,
		}
		if p.PublishedAt != nil {
			item.Created = *p.PublishedAt
		}
		f.Items = append(f.Items, item)
	}

	rss, err := f.ToRss()
	if err != nil {
		return "", fmt.Errorf("failed to render rss: %w", err)
	}
	return rss, nil
}

func latest(posts []models.Post) time.Time {
	for _, p := range posts {
		if p.PublishedAt != nil {
			return *p.PublishedAt
		}
	}
	return time.Time{}
}
