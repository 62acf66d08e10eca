// Package normalize converts raw workspace records into the internal
// Post/Page schema. Everything here is pure: no I/O, no clock reads
// except through the injected now value.
package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hferrand/inkstream/internal/models"
)

// Batch is the result of normalizing one raw record set.
type Batch struct {
	Posts []models.Post
	Pages []models.Page
	// Dropped counts malformed records (missing title, unknown type).
	// Per-record issues never fail the whole batch.
	Dropped int
	// Warnings carries one human-readable line per dropped record.
	Warnings []string
}

// statusLabels maps workspace status labels onto the internal enum.
// Unknown labels fall through to draft so unpublished content can never
// leak through a label rename upstream.
var statusLabels = map[string]models.Status{
	"published": models.StatusPublished,
	"public":    models.StatusPublished,
	"live":      models.StatusPublished,
	"draft":     models.StatusDraft,
	"private":   models.StatusDraft,
	"archived":  models.StatusDraft,
}

// Normalize classifies, slugifies and orders one batch of raw records.
// now anchors the "published means publishedAt <= now" rule.
func Normalize(records []models.RawRecord, now time.Time) Batch {
	var b Batch
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		if strings.TrimSpace(rec.Title) == "" {
			b.drop("record %d (%s): missing title", i, rec.ID)
			continue
		}

		slug := uniqueSlug(slugFor(rec), seen)

		switch strings.ToLower(strings.TrimSpace(rec.Object)) {
		case "post", "article":
			b.Posts = append(b.Posts, buildPost(rec, slug, now))
		case "page":
			b.Pages = append(b.Pages, buildPage(rec, slug, now))
		default:
			b.drop("record %d (%s): unknown type %q", i, rec.ID, rec.Object)
		}
	}

	sortPosts(b.Posts)
	return b
}

func (b *Batch) drop(format string, a ...any) {
	b.Dropped++
	b.Warnings = append(b.Warnings, fmt.Sprintf(format, a...))
}

func buildPost(rec models.RawRecord, slug string, now time.Time) models.Post {
	status := mapStatus(rec.StatusLabel)
	publishedAt := parseTime(rec.PublishedAt)

	// published requires a publication date that is not in the future
	if status == models.StatusPublished && (publishedAt == nil || publishedAt.After(now)) {
		status = models.StatusDraft
	}
	if status == models.StatusDraft {
		publishedAt = nil
	}

	return models.Post{
		ID:            rec.ID,
		Slug:          slug,
		Title:         strings.TrimSpace(rec.Title),
		Summary:       strings.TrimSpace(rec.Summary),
		CoverImageURL: rec.CoverURL,
		Tags:          dedupeTags(rec.Tags),
		Status:        status,
		PublishedAt:   publishedAt,
		UpdatedAt:     updatedAt(rec, now),
	}
}

func buildPage(rec models.RawRecord, slug string, now time.Time) models.Page {
	return models.Page{
		ID:            rec.ID,
		Slug:          slug,
		Title:         strings.TrimSpace(rec.Title),
		Summary:       strings.TrimSpace(rec.Summary),
		CoverImageURL: rec.CoverURL,
		Status:        mapStatus(rec.StatusLabel),
		UpdatedAt:     updatedAt(rec, now),
	}
}

func mapStatus(label string) models.Status {
	if s, ok := statusLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return s
	}
	return models.StatusDraft
}

// slugFor prefers the explicit slug field; otherwise the title is
// slugified.
func slugFor(rec models.RawRecord) string {
	if s := Slugify(rec.Slug); s != "" {
		return s
	}
	return Slugify(rec.Title)
}

// uniqueSlug disambiguates within the batch by appending a numeric
// suffix to later duplicates, in input order: hello-world, hello-world-2.
func uniqueSlug(slug string, seen map[string]int) string {
	if slug == "" {
		slug = "untitled"
	}
	n := seen[slug]
	seen[slug] = n + 1
	if n == 0 {
		return slug
	}
	for {
		candidate := fmt.Sprintf("%s-%d", slug, n+1)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
		n++
	}
}

// Slugify lowercases, maps every non-alphanumeric run to a single
// hyphen and trims the edges.
func Slugify(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}

// sortPosts orders descending by PublishedAt; posts without a date sort
// last. This is the canonical order every consumer relies on.
func sortPosts(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		pi, pj := posts[i].PublishedAt, posts[j].PublishedAt
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return pi.After(*pj)
		}
	})
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func updatedAt(rec models.RawRecord, now time.Time) time.Time {
	if t := parseTime(rec.UpdatedAt); t != nil {
		return *t
	}
	return now
}
