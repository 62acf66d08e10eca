package normalize

import (
	"testing"
	"time"

	"github.com/hferrand/inkstream/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func rawPost(id, title, status, publishedAt string) models.RawRecord {
	return models.RawRecord{
		Object:      "post",
		ID:          id,
		Title:       title,
		StatusLabel: status,
		PublishedAt: publishedAt,
	}
}

func TestNormalize_Classification(t *testing.T) {
	records := []models.RawRecord{
		rawPost("p1", "First Post", "published", "2026-02-01T00:00:00Z"),
		{Object: "page", ID: "g1", Title: "About", StatusLabel: "published"},
		{Object: "widget", ID: "w1", Title: "Nope"},
		{Object: "post", ID: "p2", Title: "   "},
	}

	b := Normalize(records, now)

	require.Len(t, b.Posts, 1)
	require.Len(t, b.Pages, 1)
	assert.Equal(t, 2, b.Dropped, "unknown type and missing title are dropped")
	assert.Len(t, b.Warnings, 2)
	assert.Equal(t, "first-post", b.Posts[0].Slug)
	assert.Equal(t, "about", b.Pages[0].Slug)
}

func TestNormalize_DuplicateTitlesGetDeterministicSuffixes(t *testing.T) {
	records := []models.RawRecord{
		rawPost("p1", "Hello World", "published", "2026-01-02T00:00:00Z"),
		rawPost("p2", "Hello World", "published", "2026-01-01T00:00:00Z"),
		rawPost("p3", "Hello World", "draft", ""),
	}

	b := Normalize(records, now)
	require.Len(t, b.Posts, 3)

	slugs := make(map[string]string, 3)
	for _, p := range b.Posts {
		slugs[p.ID] = p.Slug
	}
	assert.Equal(t, "hello-world", slugs["p1"], "first record in input order keeps the bare slug")
	assert.Equal(t, "hello-world-2", slugs["p2"])
	assert.Equal(t, "hello-world-3", slugs["p3"])
}

func TestNormalize_SlugUniquenessAcrossPostsAndPages(t *testing.T) {
	records := []models.RawRecord{
		rawPost("p1", "Contact", "published", "2026-01-01T00:00:00Z"),
		{Object: "page", ID: "g1", Title: "Contact", StatusLabel: "published"},
	}

	b := Normalize(records, now)
	require.Len(t, b.Posts, 1)
	require.Len(t, b.Pages, 1)
	assert.NotEqual(t, b.Posts[0].Slug, b.Pages[0].Slug)
}

func TestNormalize_ExplicitSlugWins(t *testing.T) {
	rec := rawPost("p1", "Some Long Title", "published", "2026-01-01T00:00:00Z")
	rec.Slug = "Short One"

	b := Normalize([]models.RawRecord{rec}, now)
	require.Len(t, b.Posts, 1)
	assert.Equal(t, "short-one", b.Posts[0].Slug)
}

func TestNormalize_UnknownStatusLabelIsDraft(t *testing.T) {
	records := []models.RawRecord{
		rawPost("p1", "Sneaky", "totally-new-label", "2026-01-01T00:00:00Z"),
	}

	b := Normalize(records, now)
	require.Len(t, b.Posts, 1)
	assert.Equal(t, models.StatusDraft, b.Posts[0].Status, "unrecognized labels must never leak unpublished content")
	assert.Nil(t, b.Posts[0].PublishedAt)
}

func TestNormalize_FuturePublishedAtIsDemoted(t *testing.T) {
	records := []models.RawRecord{
		rawPost("p1", "From The Future", "published", "2027-01-01T00:00:00Z"),
		rawPost("p2", "No Date", "published", ""),
	}

	b := Normalize(records, now)
	require.Len(t, b.Posts, 2)
	for _, p := range b.Posts {
		assert.Equal(t, models.StatusDraft, p.Status)
	}
}

func TestNormalize_PublishedImpliesDateNotAfterNow(t *testing.T) {
	records := []models.RawRecord{
		rawPost("p1", "One", "published", "2026-02-20T00:00:00Z"),
		rawPost("p2", "Two", "live", "2026-02-21T00:00:00Z"),
		rawPost("p3", "Three", "draft", ""),
		rawPost("p4", "Four", "published", "2099-01-01T00:00:00Z"),
	}

	b := Normalize(records, now)
	for _, p := range b.Posts {
		if p.Status == models.StatusPublished {
			require.NotNil(t, p.PublishedAt)
			assert.False(t, p.PublishedAt.After(now))
		}
	}
}

func TestNormalize_CanonicalOrderIsReverseChronological(t *testing.T) {
	records := []models.RawRecord{
		rawPost("old", "Old", "published", "2026-01-01T00:00:00Z"),
		rawPost("dateless", "Dateless", "draft", ""),
		rawPost("new", "New", "published", "2026-02-15T00:00:00Z"),
		rawPost("mid", "Mid", "published", "2026-02-01T00:00:00Z"),
	}

	b := Normalize(records, now)
	require.Len(t, b.Posts, 4)

	ids := []string{b.Posts[0].ID, b.Posts[1].ID, b.Posts[2].ID, b.Posts[3].ID}
	assert.Equal(t, []string{"new", "mid", "old", "dateless"}, ids, "missing dates sort last")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  everywhere  ", "spaces-everywhere"},
		{"C'est l'été!", "c-est-l-t"},
		{"--already--hyphened--", "already-hyphened"},
		{"ALLCAPS123", "allcaps123"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestNormalize_TagsDeduped(t *testing.T) {
	rec := rawPost("p1", "Tagged", "published", "2026-01-01T00:00:00Z")
	rec.Tags = []string{"go", "go", " ", "web"}

	b := Normalize([]models.RawRecord{rec}, now)
	require.Len(t, b.Posts, 1)
	assert.Equal(t, []string{"go", "web"}, b.Posts[0].Tags)
}
