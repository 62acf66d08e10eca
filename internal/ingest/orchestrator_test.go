package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/contentcache"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/models"
	"github.com/hferrand/inkstream/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.UseTestMode()
}

const testWorkspaceURL = "https://workspace.example/v1/export"

func testConfig(ttl time.Duration) *config.Config {
	return &config.Config{
		WorkspaceURL:    testWorkspaceURL,
		CacheTTLSeconds: int(ttl / time.Second),
	}
}

func newTestOrchestrator(t *testing.T, ttl time.Duration, client workspace.Client) *Orchestrator {
	t.Helper()
	cache, err := contentcache.New(ttl, "")
	require.NoError(t, err)
	return New(testConfig(ttl), cache, client)
}

func sampleRecords() []models.RawRecord {
	return []models.RawRecord{
		{Object: "post", ID: "p1", Title: "Newest", StatusLabel: "published", PublishedAt: "2026-02-10T00:00:00Z"},
		{Object: "post", ID: "p2", Title: "Older", StatusLabel: "published", PublishedAt: "2026-01-10T00:00:00Z"},
		{Object: "post", ID: "p3", Title: "Oldest", StatusLabel: "published", PublishedAt: "2025-12-10T00:00:00Z"},
		{Object: "post", ID: "p4", Title: "Work In Progress", StatusLabel: "draft"},
		{Object: "page", ID: "g1", Title: "About", StatusLabel: "published"},
	}
}

func TestFetchContent_NoSourceConfigured(t *testing.T) {
	mock := workspace.NewMockClient()
	cache, err := contentcache.New(time.Minute, "")
	require.NoError(t, err)

	cfg := &config.Config{CacheTTLSeconds: 60} // no workspace URL
	o := New(cfg, cache, mock)

	res := o.FetchContent(context.Background())

	assert.Equal(t, models.SourceNone, res.Source)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Pages)
	assert.Equal(t, 0, mock.FetchCount(), "no network call may be attempted")
}

func TestFetchContent_FreshThenCache(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, time.Minute, mock)

	first := o.FetchContent(context.Background())
	require.Equal(t, models.SourceFresh, first.Source)
	assert.Len(t, first.Posts, 4)
	assert.Len(t, first.Pages, 1)

	second := o.FetchContent(context.Background())
	assert.Equal(t, models.SourceCache, second.Source)
	assert.Equal(t, 1, mock.FetchCount(), "cache hit must not refetch")

	// idempotence: identical content within one TTL window
	b1, _ := json.Marshal(first.Posts)
	b2, _ := json.Marshal(second.Posts)
	assert.Equal(t, b1, b2)
}

func TestFetchContent_RefetchAfterExpiry(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, 20*time.Millisecond, mock)

	require.Equal(t, models.SourceFresh, o.FetchContent(context.Background()).Source)
	time.Sleep(40 * time.Millisecond)

	res := o.FetchContent(context.Background())
	assert.Equal(t, models.SourceFresh, res.Source)
	assert.Equal(t, 2, mock.FetchCount())
}

func TestFetchContent_CoalescesConcurrentMisses(t *testing.T) {
	const callers = 8

	mock := workspace.NewMockClient()
	mock.RecordsFunc = func(string) ([]models.RawRecord, error) {
		time.Sleep(50 * time.Millisecond) // hold the flight open
		return sampleRecords(), nil
	}
	o := newTestOrchestrator(t, time.Minute, mock)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sources []models.Source
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := o.FetchContent(context.Background())
			mu.Lock()
			sources = append(sources, res.Source)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mock.FetchCount(), "N simultaneous missers share one upstream fetch")

	fresh := 0
	for _, s := range sources {
		require.Contains(t, []models.Source{models.SourceFresh, models.SourceCache}, s)
		if s == models.SourceFresh {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh, "fresh is reported exactly once per expiry cycle")
}

func TestFetchContent_StaleFallbackOnRemoteFailure(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, 20*time.Millisecond, mock)

	require.Equal(t, models.SourceFresh, o.FetchContent(context.Background()).Source)

	// remote goes down, entry expires
	mock.RecordsErr = workspace.ErrRemoteUnavailable
	time.Sleep(40 * time.Millisecond)

	res := o.FetchContent(context.Background())
	assert.Equal(t, models.SourceCache, res.Source, "stale entry beats a hard error")
	assert.Len(t, res.Posts, 4)
	assert.Empty(t, res.Error)
}

func TestFetchContent_ErrorWithoutPriorEntry(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.RecordsErr = workspace.ErrRemoteUnavailable
	o := newTestOrchestrator(t, time.Minute, mock)

	res := o.FetchContent(context.Background())
	assert.Equal(t, models.SourceError, res.Source)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Pages)
	assert.NotEmpty(t, res.Error)
}

func TestRefresh_InvalidatesAndRefetches(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, time.Hour, mock)

	require.Equal(t, models.SourceFresh, o.FetchContent(context.Background()).Source)
	require.Equal(t, models.SourceCache, o.FetchContent(context.Background()).Source)

	res := o.Refresh(context.Background())
	assert.Equal(t, models.SourceFresh, res.Source, "refresh bypasses a still-valid TTL")
	assert.Equal(t, 2, mock.FetchCount())
}

func TestPublishedPosts_FiltersDraftsKeepsOrder(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, time.Minute, mock)

	posts, source := o.PublishedPosts(context.Background())
	require.Equal(t, models.SourceFresh, source)
	require.Len(t, posts, 3)

	assert.Equal(t, []string{"newest", "older", "oldest"}, []string{posts[0].Slug, posts[1].Slug, posts[2].Slug})
	for _, p := range posts {
		require.NotNil(t, p.PublishedAt)
		assert.False(t, p.PublishedAt.After(time.Now()))
	}
	assert.Equal(t, 1, mock.FetchCount(), "projection must not trigger its own fetch cycle")
}

func TestPostBySlug(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, time.Minute, mock)

	post, res, ok := o.PostBySlug(context.Background(), "older")
	require.True(t, ok)
	assert.Equal(t, "p2", post.ID)
	assert.Len(t, res.Posts, 4, "renderer gets the full record set for navigation")

	_, _, ok = o.PostBySlug(context.Background(), "missing")
	assert.False(t, ok)
}

func TestPageBySlug(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	o := newTestOrchestrator(t, time.Minute, mock)

	page, ok := o.PageBySlug(context.Background(), "about")
	require.True(t, ok)
	assert.Equal(t, "g1", page.ID)
}

func TestFetchBlocks_BypassesContentCache(t *testing.T) {
	mock := workspace.NewMockClient()
	mock.Records = sampleRecords()
	mock.Blocks["p1"] = models.RawBlockTree{ID: "p1", Blocks: json.RawMessage(`[{"type":"paragraph"}]`)}
	o := newTestOrchestrator(t, time.Minute, mock)

	tree, err := o.FetchBlocks(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", tree.ID)

	// the block path issues no record fetch and populates nothing
	assert.Equal(t, 0, mock.FetchCount())
	res := o.FetchContent(context.Background())
	assert.Equal(t, models.SourceFresh, res.Source, "content cache was untouched by the block fetch")

	_, err = o.FetchBlocks(context.Background(), "nope")
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestSourceKey_ChangesWithURL(t *testing.T) {
	k1 := SourceKey("https://a.example")
	k2 := SourceKey("https://b.example")
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, SourceKey("https://a.example"))
	assert.Len(t, k1, 16)
}
