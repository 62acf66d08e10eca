// Package server exposes the ingestion layer over HTTP. Every handler
// is a one-shot call into the orchestrator; none of them keep state of
// their own.
package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/ingest"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/sitemap"
	"github.com/hferrand/inkstream/internal/workspace"

	feedbuilder "github.com/hferrand/inkstream/internal/feed"
)

const requestIDHeader = "X-Request-Id"

type Server struct {
	app  *fiber.App
	cfg  *config.Config
	orch *ingest.Orchestrator
}

func New(cfg *config.Config, orch *ingest.Orchestrator) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "inkstream",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	s := &Server{app: app, cfg: cfg, orch: orch}

	app.Use(requestLog)

	app.Get("/healthz", s.handleHealth)
	app.Get("/api/content", s.handleContent)
	app.Get("/api/posts", s.handlePosts)
	app.Get("/api/posts/:slug", s.handlePostBySlug)
	app.Get("/api/pages/:slug", s.handlePageBySlug)
	app.Get("/api/blocks/:id", s.handleBlocks)
	app.Get("/sitemap.xml", s.handleSitemap)
	app.Get("/feed.xml", s.handleFeed)
	app.Post("/api/refresh", s.handleRefresh)

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving HTTP on the configured port.
func (s *Server) Listen() error {
	addr := fmt.Sprintf(":%d", s.cfg.ListenPort)
	logger.Info("listening on %s", addr)
	return s.app.Listen(addr)
}

// requestLog tags each request with an id and logs its outcome.
func requestLog(c fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)

	start := time.Now()
	err := c.Next()

	logger.Debug("%s %s -> %d (%s) id=%s",
		c.Method(), c.Path(), c.Response().StatusCode(),
		time.Since(start).Truncate(time.Microsecond), id)
	return err
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleContent returns the full orchestrator envelope, provenance
// included. Degraded sources still answer 200: the site renders with
// whatever is available.
func (s *Server) handleContent(c fiber.Ctx) error {
	return c.JSON(s.orch.FetchContent(c.Context()))
}

func (s *Server) handlePosts(c fiber.Ctx) error {
	posts, source := s.orch.PublishedPosts(c.Context())
	return c.JSON(fiber.Map{"posts": posts, "source": source})
}

func (s *Server) handlePostBySlug(c fiber.Ctx) error {
	slug := c.Params("slug")
	post, res, ok := s.orch.PostBySlug(c.Context(), slug)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "post not found", "slug": slug, "source": res.Source,
		})
	}
	return c.JSON(fiber.Map{"post": post, "source": res.Source})
}

func (s *Server) handlePageBySlug(c fiber.Ctx) error {
	slug := c.Params("slug")
	page, ok := s.orch.PageBySlug(c.Context(), slug)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "page not found", "slug": slug,
		})
	}
	return c.JSON(fiber.Map{"page": page})
}

// handleBlocks serves the raw block tree for one identifier. This path
// never touches the content cache.
func (s *Server) handleBlocks(c fiber.Ctx) error {
	id := c.Params("id")
	tree, err := s.orch.FetchBlocks(c.Context(), id)
	switch {
	case err == nil:
		return c.JSON(tree)
	case errors.Is(err, workspace.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "blocks not found", "id": id})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "workspace unavailable"})
	}
}

func (s *Server) handleSitemap(c fiber.Ctx) error {
	posts, _ := s.orch.PublishedPosts(c.Context())
	out, err := sitemap.Build(posts, s.cfg.BaseURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("sitemap unavailable")
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.Send(out)
}

func (s *Server) handleFeed(c fiber.Ctx) error {
	posts, _ := s.orch.PublishedPosts(c.Context())
	rss, err := feedbuilder.Build(posts, feedbuilder.Options{
		Title:       s.cfg.SiteTitle,
		Description: s.cfg.SiteDescription,
		BaseURL:     s.cfg.BaseURL,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("feed unavailable")
	}
	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.SendString(rss)
}

// handleRefresh forces invalidation and a synchronous refetch. Guarded
// by the admin token.
func (s *Server) handleRefresh(c fiber.Ctx) error {
	if s.cfg.AdminToken == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "refresh disabled: no admin token configured"})
	}
	token := c.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid admin token"})
	}

	res := s.orch.Refresh(c.Context())
	return c.JSON(fiber.Map{
		"source": res.Source,
		"posts":  len(res.Posts),
		"pages":  len(res.Pages),
		"error":  res.Error,
	})
}
