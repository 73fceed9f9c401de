package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Projector turns the feed behind a Source into Episode records. It keeps no
// state between calls: every query fetches the feed again.
type Projector struct {
	source Source
	parser *Parser
}

func NewProjector(source Source, parser *Parser) *Projector {
	return &Projector{
		source: source,
		parser: parser,
	}
}

func (p *Projector) Source() string {
	return p.source.Location()
}

// Episodes fetches the feed and projects every item, in feed order.
func (p *Projector) Episodes(ctx context.Context) ([]Episode, error) {
	items, err := p.fetchItems(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(items, func(item RawItem, _ int) Episode {
		return NewEpisode(item)
	}), nil
}

// ListEpisodeIDs returns one id per feed item, in feed order, without
// deduplication.
func (p *Projector) ListEpisodeIDs(ctx context.Context) ([]string, error) {
	items, err := p.fetchItems(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(items, func(item RawItem, _ int) string {
		return item.ID
	}), nil
}

// GetEpisodeByID returns the first episode whose id equals id, or nil, nil
// when the feed has no such item.
func (p *Projector) GetEpisodeByID(ctx context.Context, id string) (*Episode, error) {
	episodes, err := p.Episodes(ctx)
	if err != nil {
		return nil, err
	}

	episode, ok := lo.Find(episodes, func(e Episode) bool {
		return e.ID == id
	})
	if !ok {
		slog.Debug("Episode not found in feed", "episode", id, "feed", p.source.Location())
		return nil, nil
	}

	return &episode, nil
}

// NewEpisode projects a single raw item.
func NewEpisode(item RawItem) Episode {
	return Episode{
		ID:          item.ID,
		Title:       fmt.Sprintf("%s: %s", item.ID, item.Title),
		Description: item.Description,
		Content:     item.Content,
		Published:   item.Published,
		Audio:       firstAudio(item.Enclosures),
		Link:        item.Link,
	}
}

func firstAudio(enclosures []Enclosure) *Audio {
	if len(enclosures) == 0 {
		return nil
	}
	return &Audio{
		Src:  enclosures[0].URL,
		Type: enclosures[0].Type,
	}
}

func (p *Projector) fetchItems(ctx context.Context) ([]RawItem, error) {
	data, err := p.source.Fetch(ctx)
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &FetchError{URL: p.source.Location(), Err: err}
	}

	metadata, items, err := p.parser.Run(data)
	if err != nil {
		return nil, &FetchError{URL: p.source.Location(), Err: err}
	}

	slog.Debug("Feed fetched", "feed", p.source.Location(), "title", metadata.Title, "items", len(items))
	return items, nil
}
