package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/their-side/app/database"
	"github.com/lysyi3m/their-side/app/feed"
	"github.com/lysyi3m/their-side/app/pages"
	"github.com/lysyi3m/their-side/app/tasks"
)

func NewHandler(builder *pages.Builder, errorPages ErrorPages, pageRepo database.PageRepository,
	scheduler tasks.TaskSchedulerInterface, feedSource string, version string) *Handler {
	return &Handler{
		builder:    builder,
		errorPages: errorPages,
		pageRepo:   pageRepo,
		scheduler:  scheduler,
		feedSource: feedSource,
		version:    version,
	}
}

func (h *Handler) GetEpisodePage(c *gin.Context) {
	id := c.Param("episode")

	page, status, err := h.builder.Serve(c.Request.Context(), id)
	if err != nil {
		slog.Error("Page generation failed", "episode", id, "error", err)
		h.renderFailure(c)
		return
	}

	if page == nil {
		h.renderNotFound(c)
		return
	}

	if status == pages.CacheStale {
		h.enqueueRevalidation(id)
	}

	c.Header("X-Page-Cache", string(status))
	c.Header("X-Generated-At", page.GeneratedAt.Format(time.RFC3339))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.HTML)
}

func (h *Handler) APIGetEpisodeProps(c *gin.Context) {
	id := c.Param("episode")

	page, status, err := h.builder.Serve(c.Request.Context(), id)
	if err != nil {
		slog.Error("Page generation failed", "episode", id, "error", err)
		c.JSON(statusForError(err), gin.H{"error": "Failed to load episode"})
		return
	}

	if page == nil {
		c.JSON(http.StatusNotFound, gin.H{"notFound": true})
		return
	}

	if status == pages.CacheStale {
		h.enqueueRevalidation(id)
	}

	c.Header("X-Page-Cache", string(status))
	c.Data(http.StatusOK, "application/json; charset=utf-8", page.Props)
}

func (h *Handler) APIGetPaths(c *gin.Context) {
	paths, err := h.builder.StaticPaths(c.Request.Context())
	if err != nil {
		slog.Error("Path enumeration failed", "feed", h.feedSource, "error", err)
		c.JSON(statusForError(err), gin.H{"error": "Failed to enumerate episodes"})
		return
	}

	c.JSON(http.StatusOK, paths)
}

func (h *Handler) APIRevalidateEpisode(c *gin.Context) {
	id := c.Param("episode")

	page, err := h.builder.Build(c.Request.Context(), id)
	if err != nil {
		slog.Error("On-demand revalidation failed", "episode", id, "error", err)
		c.JSON(statusForError(err), gin.H{
			"error":   "Failed to revalidate episode",
			"details": err.Error(),
		})
		return
	}

	response := gin.H{
		"revalidated": true,
		"episode":     id,
		"found":       page != nil,
	}
	if page != nil {
		response["generated_at"] = page.GeneratedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"feed":      h.feedSource,
		"version":   h.version,
	}

	if pageCount, err := h.pageRepo.GetPageCount(); err == nil {
		health["pages"] = pageCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) enqueueRevalidation(id string) {
	task := tasks.NewRevalidatePageTask(id, h.builder)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue RevalidatePageTask", "episode", id, "error", err)
	}
}

func (h *Handler) renderNotFound(c *gin.Context) {
	html, err := h.errorPages.NotFound()
	if err != nil {
		slog.Error("Failed to render not-found page", "error", err)
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", html)
}

func (h *Handler) renderFailure(c *gin.Context) {
	html, err := h.errorPages.Failure()
	if err != nil {
		slog.Error("Failed to render error page", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", html)
}

// statusForError maps feed failures to 502; everything else is a 500.
func statusForError(err error) int {
	var fetchErr *feed.FetchError
	if errors.As(err, &fetchErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
