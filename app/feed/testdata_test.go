package feed

import (
	"context"
	"fmt"
	"strings"
)

type staticSource struct {
	data  []byte
	err   error
	calls int
}

func (s *staticSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *staticSource) Location() string {
	return "https://feeds.example.com/their-side.xml"
}

type testItem struct {
	guid       string
	title      string
	enclosures []string // "url|type"
}

func buildRSS(items ...testItem) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Their Side</title>
    <link>https://their-side.example.com</link>
    <description>Conversations with the most tragically misunderstood people of our time.</description>
    <language>en</language>
`)
	for _, item := range items {
		b.WriteString("    <item>\n")
		fmt.Fprintf(&b, "      <guid isPermaLink=\"false\">%s</guid>\n", item.guid)
		fmt.Fprintf(&b, "      <title>%s</title>\n", item.title)
		fmt.Fprintf(&b, "      <description>Description of %s</description>\n", item.title)
		fmt.Fprintf(&b, "      <content:encoded><![CDATA[<h2>Topics</h2><p>Notes for %s</p>]]></content:encoded>\n", item.title)
		b.WriteString("      <pubDate>Tue, 10 Jan 2023 08:00:00 GMT</pubDate>\n")
		for _, enclosure := range item.enclosures {
			parts := strings.SplitN(enclosure, "|", 2)
			fmt.Fprintf(&b, "      <enclosure url=\"%s\" length=\"1024\" type=\"%s\" />\n", parts[0], parts[1])
		}
		b.WriteString("    </item>\n")
	}
	b.WriteString("  </channel>\n</rss>")
	return []byte(b.String())
}
