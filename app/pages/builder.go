package pages

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lysyi3m/their-side/app/database"
	"github.com/lysyi3m/their-side/app/metrics"
)

// Builder runs the static generation lifecycle for episode pages: path
// enumeration, props loading, rendering, and regeneration after the
// revalidate interval.
type Builder struct {
	episodes   EpisodeSource
	renderer   PageRenderer
	pageRepo   database.PageRepository
	extractor  ContentExtractor
	revalidate time.Duration
	builds     singleflight.Group
	now        func() time.Time
}

func NewBuilder(episodes EpisodeSource, renderer PageRenderer, pageRepo database.PageRepository, revalidate time.Duration) *Builder {
	return &Builder{
		episodes:   episodes,
		renderer:   renderer,
		pageRepo:   pageRepo,
		revalidate: revalidate,
		now:        time.Now,
	}
}

// WithContentExtractor enables show-notes extraction for content-less episodes.
func (b *Builder) WithContentExtractor(extractor ContentExtractor) *Builder {
	b.extractor = extractor
	return b
}

// StaticPaths enumerates every episode id in the feed. Feed failures are returned
// to the caller unchanged.
func (b *Builder) StaticPaths(ctx context.Context) (*Paths, error) {
	ids, err := b.episodes.ListEpisodeIDs(ctx)
	if err != nil {
		return nil, err
	}

	paths := &Paths{
		Paths:    make([]Path, 0, len(ids)),
		Fallback: FallbackBlocking,
	}
	for _, id := range ids {
		paths.Paths = append(paths.Paths, Path{Params: Params{Episode: id}})
	}

	return paths, nil
}

// StaticProps loads the props for one episode page, or nil when the feed has
// no such episode.
func (b *Builder) StaticProps(ctx context.Context, id string) (*Props, error) {
	episode, err := b.episodes.GetEpisodeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, nil
	}

	if episode.Content == "" && episode.Link != "" && b.extractor != nil {
		content, err := b.extractor.Extract(ctx, episode.Link)
		if err != nil {
			slog.Warn("Content extraction failed", "episode", id, "link", episode.Link, "error", err)
		} else {
			episode.Content = content
		}
	}

	return &Props{
		Episode:    *episode,
		Revalidate: int(b.revalidate / time.Second),
	}, nil
}

// Build renders and stores the page for id. It returns nil, nil when the
// episode is not in the feed; any previously stored page is removed then.
// Concurrent builds of the same id share one result. The shared build is not
// tied to any one caller: a caller whose ctx ends stops waiting, the build
// carries on for the others and is bounded by the feed fetch timeout.
func (b *Builder) Build(ctx context.Context, id string) (*database.Page, error) {
	ch := b.builds.DoChan(id, func() (interface{}, error) {
		return b.build(context.WithoutCancel(ctx), id)
	})

	select {
	case res := <-ch:
		if res.Shared {
			slog.Debug("Page build shared", "episode", id)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*database.Page), nil
	case <-ctx.Done():
		slog.Debug("Caller stopped waiting for page build", "episode", id, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

func (b *Builder) build(ctx context.Context, id string) (*database.Page, error) {
	start := b.now()

	props, err := b.StaticProps(ctx, id)
	if err != nil {
		metrics.PageBuilt(metrics.BuildError)
		return nil, err
	}

	if props == nil {
		metrics.PageBuilt(metrics.BuildNotFound)
		if err := b.pageRepo.DeletePage(id); err != nil {
			return nil, fmt.Errorf("failed to remove page: %w", err)
		}
		slog.Debug("Episode not found, page removed", "episode", id)
		return nil, nil
	}

	html, err := b.renderer.Episode(props.Episode)
	if err != nil {
		metrics.PageBuilt(metrics.BuildError)
		return nil, err
	}

	encoded, err := json.Marshal(props)
	if err != nil {
		metrics.PageBuilt(metrics.BuildError)
		return nil, fmt.Errorf("failed to encode props: %w", err)
	}

	page := &database.Page{
		EpisodeID:   id,
		HTML:        html,
		Props:       encoded,
		GeneratedAt: b.now(),
	}

	if err := b.pageRepo.UpsertPage(*page); err != nil {
		metrics.PageBuilt(metrics.BuildError)
		return nil, fmt.Errorf("failed to store page: %w", err)
	}

	metrics.PageBuilt(metrics.BuildSuccess)
	slog.Info("Page generated", "episode", id, "duration", b.now().Sub(start))

	return page, nil
}

// Serve returns the page for id and how it was obtained. A stored page is
// returned as-is, fresh or stale; a missing page is built while the caller
// waits. A nil page means the episode does not exist.
func (b *Builder) Serve(ctx context.Context, id string) (*database.Page, CacheStatus, error) {
	page, err := b.pageRepo.GetPage(id)
	if err != nil {
		return nil, "", err
	}

	if page != nil {
		if b.IsStale(page) {
			metrics.PageRequested(metrics.CacheStale)
			return page, CacheStale, nil
		}
		metrics.PageRequested(metrics.CacheHit)
		return page, CacheHit, nil
	}

	metrics.PageRequested(metrics.CacheMiss)
	page, err = b.Build(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return page, CacheMiss, nil
}

// Revalidate rebuilds the page for id unless the stored copy is still fresh.
// A failed rebuild leaves the stale page in place.
func (b *Builder) Revalidate(ctx context.Context, id string) error {
	page, err := b.pageRepo.GetPage(id)
	if err != nil {
		return err
	}
	if page != nil && !b.IsStale(page) {
		slog.Debug("Page still fresh, skipping regeneration", "episode", id)
		return nil
	}

	_, err = b.Build(ctx, id)
	return err
}

func (b *Builder) IsStale(page *database.Page) bool {
	return b.now().Sub(page.GeneratedAt) >= b.revalidate
}
