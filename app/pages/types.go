package pages

import (
	"context"

	"github.com/lysyi3m/their-side/app/feed"
)

// FallbackBlocking means paths missing from the enumeration are still built
// on request, and the request waits for the build.
const FallbackBlocking = "blocking"

// CacheStatus tells how Serve obtained a page.
type CacheStatus string

const (
	CacheHit   CacheStatus = "HIT"
	CacheStale CacheStatus = "STALE"
	CacheMiss  CacheStatus = "MISS"
)

type Params struct {
	Episode string `json:"episode"`
}

type Path struct {
	Params Params `json:"params"`
}

type Paths struct {
	Paths    []Path `json:"paths"`
	Fallback string `json:"fallback"`
}

func (p *Paths) EpisodeIDs() []string {
	ids := make([]string, 0, len(p.Paths))
	for _, path := range p.Paths {
		ids = append(ids, path.Params.Episode)
	}
	return ids
}

type Props struct {
	Episode    feed.Episode `json:"episode"`
	Revalidate int          `json:"revalidate"` // seconds
}

// EpisodeSource is the part of the feed projector the builder relies on.
type EpisodeSource interface {
	ListEpisodeIDs(ctx context.Context) ([]string, error)
	GetEpisodeByID(ctx context.Context, id string) (*feed.Episode, error)
}

// PageRenderer renders episode pages.
type PageRenderer interface {
	Episode(episode feed.Episode) ([]byte, error)
}

// ContentExtractor fills in show notes for episodes that have none.
type ContentExtractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

var (
	_ EpisodeSource    = (*feed.Projector)(nil)
	_ ContentExtractor = (*feed.ContentExtractor)(nil)
)
