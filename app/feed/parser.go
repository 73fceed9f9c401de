package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []RawItem, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) RawItem {
	normalized := RawItem{
		ID:          cmp.Or(item.GUID, linkID(item.Link)),
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Content:     item.Content,
		Published:   cmp.Or(item.Published, item.Updated),
	}

	normalized.Enclosures = make([]Enclosure, 0, len(item.Enclosures))
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}

		normalized.Enclosures = append(normalized.Enclosures, Enclosure{
			URL:    enclosure.URL,
			Type:   enclosure.Type,
			Length: p.parseLength(enclosure.Length),
		})
	}

	return normalized
}

func (p *Parser) parseLength(length string) int64 {
	if length == "" {
		return 0
	}
	value, err := strconv.ParseInt(length, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// linkID derives an id for items without a guid: the last path segment of the
// link, so the id fits in a single route segment.
func linkID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	return link
}
