package listing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hferrand/inkstream/internal/ingest"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/models"
	"github.com/hferrand/inkstream/internal/printer"
	"github.com/hferrand/inkstream/internal/utils"
)

// row is a view model for rendering.
type row struct {
	Slug      string
	Title     string
	Kind      string // "post" | "page"
	Status    models.Status
	Published string
}

type Lister struct {
	orch *ingest.Orchestrator
}

func New(orch *ingest.Orchestrator) *Lister {
	return &Lister{orch: orch}
}

// Execute renders the content table.
// - includeDrafts=false => published posts and pages only
// - includeDrafts=true  => everything the workspace returned
func (l *Lister) Execute(ctx context.Context, includeDrafts bool) error {
	res := l.orch.FetchContent(ctx)

	switch res.Source {
	case models.SourceNone:
		logger.Warn("no workspace configured, nothing to list")
		return nil
	case models.SourceError:
		return fmt.Errorf("content unavailable: %s", res.Error)
	}

	rows := buildRows(res, includeDrafts)

	p := printer.NewColorPrinter()
	table := logger.CreateTable([]string{"Slug", "Title", "Kind", "Status", "Published"})

	for _, r := range rows {
		status := p.Success(string(r.Status))
		if r.Status == models.StatusDraft {
			status = p.Warning(string(r.Status))
		}
		if err := table.Append([]string{r.Slug, r.Title, r.Kind, status, p.Muted(r.Published)}); err != nil {
			return fmt.Errorf("an error occurred while appending to the table: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("an error occurred while rendering the table: %w", err)
	}

	logger.Info("%d posts, %d pages (source: %s)", len(res.Posts), len(res.Pages), res.Source)
	return nil
}

func buildRows(res models.ContentResult, includeDrafts bool) []row {
	posts := res.Posts
	pages := res.Pages
	if !includeDrafts {
		posts = utils.Filter(posts, func(p models.Post) bool { return p.Status == models.StatusPublished })
		pages = utils.Filter(pages, func(p models.Page) bool { return p.Status == models.StatusPublished })
	}

	rows := utils.Map(posts, func(p models.Post) row {
		published := "-"
		if p.PublishedAt != nil {
			published = p.PublishedAt.Format(time.DateOnly)
		}
		return row{Slug: p.Slug, Title: p.Title, Kind: "post", Status: p.Status, Published: published}
	})

	pageRows := utils.Map(pages, func(p models.Page) row {
		return row{Slug: p.Slug, Title: p.Title, Kind: "page", Status: p.Status, Published: "-"}
	})

	// pages after posts, alphabetically; posts keep the canonical order
	sort.SliceStable(pageRows, func(i, j int) bool { return pageRows[i].Slug < pageRows[j].Slug })
	return append(rows, pageRows...)
}
