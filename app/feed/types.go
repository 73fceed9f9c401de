package feed

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Enclosure struct {
	URL    string
	Type   string // MIME type
	Length int64  // bytes, 0 when the feed omits it
}

// RawItem is one feed item as the parser hands it over, before projection.
type RawItem struct {
	ID          string // guid, or link when the feed has no guid
	Title       string
	Link        string
	Description string
	Content     string
	Published   string // raw pubDate text
	Enclosures  []Enclosure
}

// Episode types

type Audio struct {
	Src  string `json:"src"`
	Type string `json:"type"`
}

// Episode is the page-ready projection of a RawItem. Content is trusted HTML.
// Audio is nil when the item carries no enclosure.
type Episode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Published   string `json:"published"`
	Audio       *Audio `json:"audio"`
	Link        string `json:"link,omitempty"`
}
