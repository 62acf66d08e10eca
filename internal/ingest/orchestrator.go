// Package ingest is the entry point consumers call for content. It
// decides cache-hit vs refetch, coalesces concurrent refetches and
// resolves remote failures before they ever reach a consumer.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/contentcache"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/models"
	"github.com/hferrand/inkstream/internal/normalize"
	"github.com/hferrand/inkstream/internal/workspace"
)

// Orchestrator owns the fetch/normalize/cache cycle. All fields are
// injected so tests can substitute doubles; there is no ambient
// singleton.
type Orchestrator struct {
	cfg    *config.Config
	cache  *contentcache.Cache
	client workspace.Client
	group  singleflight.Group
	now    func() time.Time
}

func New(cfg *config.Config, cache *contentcache.Cache, client workspace.Client) *Orchestrator {
	if client == nil {
		client = workspace.New(nil, cfg.WorkspaceURL, 0)
	}
	return &Orchestrator{
		cfg:    cfg,
		cache:  cache,
		client: client,
		now:    time.Now,
	}
}

// SetClock overrides the clock, for tests only.
func (o *Orchestrator) SetClock(now func() time.Time) { o.now = now }

// SourceKey derives the cache key from a workspace URL. A config change
// yields a different key, which invalidates prior entries implicitly.
func SourceKey(workspaceURL string) string {
	sum := sha256.Sum256([]byte(workspaceURL))
	return fmt.Sprintf("%x", sum[:8])
}

// FetchContent returns the full normalized content set with its
// provenance. Concurrent callers that miss the cache share a single
// in-flight fetch per source key.
func (o *Orchestrator) FetchContent(ctx context.Context) models.ContentResult {
	if !o.cfg.HasWorkspace() {
		return models.ContentResult{
			Posts:  []models.Post{},
			Pages:  []models.Page{},
			Source: models.SourceNone,
		}
	}

	key := SourceKey(o.cfg.WorkspaceURL)

	if entry, ok := o.cache.Get(key); ok {
		return resultFrom(entry, models.SourceCache)
	}

	// fetched is only flipped by the caller whose closure actually ran,
	// so "fresh" is reported exactly once per expiry cycle no matter how
	// many callers coalesced onto this flight.
	fetched := false
	v, err, _ := o.group.Do(key, func() (interface{}, error) {
		// a coalesced predecessor may have already repopulated the cache
		if entry, ok := o.cache.Get(key); ok {
			return entry, nil
		}
		entry, err := o.refetch(ctx, key)
		if err != nil {
			return nil, err
		}
		fetched = true
		return entry, nil
	})
	if err != nil {
		return o.degrade(key, err)
	}

	entry := v.(*contentcache.Entry)
	if fetched {
		return resultFrom(entry, models.SourceFresh)
	}
	return resultFrom(entry, models.SourceCache)
}

// Refresh drops the current entry and fetches synchronously. Used by
// the manual refresh trigger.
func (o *Orchestrator) Refresh(ctx context.Context) models.ContentResult {
	if o.cfg.HasWorkspace() {
		o.cache.Invalidate(SourceKey(o.cfg.WorkspaceURL))
	}
	return o.FetchContent(ctx)
}

// PublishedPosts is a thin projection over FetchContent: published
// posts in the canonical reverse-chronological order. It never issues
// its own fetch cycle.
func (o *Orchestrator) PublishedPosts(ctx context.Context) ([]models.Post, models.Source) {
	res := o.FetchContent(ctx)
	now := o.now()
	out := make([]models.Post, 0, len(res.Posts))
	for _, p := range res.Posts {
		if p.Published(now) {
			out = append(out, p)
		}
	}
	return out, res.Source
}

// PostBySlug resolves one post for rendering, alongside the full result
// set the renderer needs for navigation.
func (o *Orchestrator) PostBySlug(ctx context.Context, slug string) (models.Post, models.ContentResult, bool) {
	res := o.FetchContent(ctx)
	for _, p := range res.Posts {
		if p.Slug == slug {
			return p, res, true
		}
	}
	return models.Post{}, res, false
}

// PageBySlug resolves one static page.
func (o *Orchestrator) PageBySlug(ctx context.Context, slug string) (models.Page, bool) {
	res := o.FetchContent(ctx)
	for _, p := range res.Pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return models.Page{}, false
}

// FetchBlocks retrieves the block tree for one identifier. This path
// deliberately bypasses the content cache: the payload is large and
// rendering-specific, and any caching belongs to the rendering layer.
func (o *Orchestrator) FetchBlocks(ctx context.Context, id string) (models.RawBlockTree, error) {
	return o.client.FetchBlockTree(ctx, id)
}

// --- internals ---

func (o *Orchestrator) refetch(ctx context.Context, key string) (*contentcache.Entry, error) {
	records, err := o.client.FetchRecords(ctx, o.cfg.WorkspaceURL)
	if err != nil {
		return nil, err
	}

	batch := normalize.Normalize(records, o.now())
	for _, w := range batch.Warnings {
		logger.Warn("normalize: dropped %s", w)
	}

	entry := &contentcache.Entry{
		Posts:     batch.Posts,
		Pages:     batch.Pages,
		FetchedAt: o.now(),
		SourceKey: key,
	}
	o.cache.Put(key, entry)

	logger.Debug("ingested %d posts, %d pages (dropped %d) for key %s",
		len(batch.Posts), len(batch.Pages), batch.Dropped, key)
	return entry, nil
}

// degrade applies the availability-over-freshness policy: serve any
// prior entry, however old, before surfacing a hard error.
func (o *Orchestrator) degrade(key string, fetchErr error) models.ContentResult {
	if entry, ok := o.cache.GetStale(key); ok {
		logger.Warn("workspace fetch failed, serving stale cache (age %s): %v",
			o.now().Sub(entry.FetchedAt).Truncate(time.Second), fetchErr)
		return resultFrom(entry, models.SourceCache)
	}

	logger.LogError("workspace fetch failed with no cached fallback: %v", fetchErr)
	return models.ContentResult{
		Posts:  []models.Post{},
		Pages:  []models.Page{},
		Source: models.SourceError,
		Error:  fetchErr.Error(),
	}
}

func resultFrom(entry *contentcache.Entry, src models.Source) models.ContentResult {
	return models.ContentResult{
		Posts:  entry.Posts,
		Pages:  entry.Pages,
		Source: src,
	}
}
