package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/text/language"

	"github.com/lysyi3m/their-side/app/cfg"
	"github.com/lysyi3m/their-side/app/feed"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateFormat = "January 2, 2006"

// Renderer turns episodes into HTML documents.
//
// Episode content is inserted as-is: the feed is operated by the same people
// who run the site and is trusted. Titles and descriptions are escaped.
type Renderer struct {
	site     *cfg.Site
	baseURL  string
	lang     string
	episode  *template.Template
	notFound *template.Template
	failure  *template.Template
}

type player struct {
	Title string
	Src   string
	Type  string
	Link  string
}

type view struct {
	Lang            string
	PageTitle       string
	MetaDescription string
	Canonical       string

	Episode  feed.Episode
	Date     string
	DateTime string
	Content  template.HTML
	Player   *player
}

func NewRenderer(site *cfg.Site, baseURL string) (*Renderer, error) {
	if site == nil {
		site = cfg.DefaultSite()
	}

	r := &Renderer{
		site:    site,
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    canonicalLanguage(site.Language),
	}

	var err error
	if r.episode, err = parse("episode.html"); err != nil {
		return nil, err
	}
	if r.notFound, err = parse("not_found.html"); err != nil {
		return nil, err
	}
	if r.failure, err = parse("error.html"); err != nil {
		return nil, err
	}

	return r, nil
}

func parse(name string) (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Episode renders the article page for one episode.
func (r *Renderer) Episode(episode feed.Episode) ([]byte, error) {
	v := view{
		Lang:            r.lang,
		PageTitle:       fmt.Sprintf("%s - %s", episode.Title, r.site.Title),
		MetaDescription: plainText(episode.Description),
		Episode:         episode,
		Content:         template.HTML(episode.Content),
	}

	if r.baseURL != "" {
		v.Canonical = r.baseURL + "/" + url.PathEscape(episode.ID)
	}

	if published, ok := parseDate(episode.Published); ok {
		v.Date = published.Format(dateFormat)
		v.DateTime = published.Format("2006-01-02")
	}

	if episode.Audio != nil {
		v.Player = &player{
			Title: episode.Title,
			Src:   episode.Audio.Src,
			Type:  episode.Audio.Type,
			Link:  "/" + url.PathEscape(episode.ID),
		}
	}

	return execute(r.episode, v)
}

func (r *Renderer) NotFound() ([]byte, error) {
	return execute(r.notFound, view{
		Lang:            r.lang,
		PageTitle:       fmt.Sprintf("Episode not found - %s", r.site.Title),
		MetaDescription: r.site.Description,
	})
}

func (r *Renderer) Failure() ([]byte, error) {
	return execute(r.failure, view{
		Lang:            r.lang,
		PageTitle:       r.site.Title,
		MetaDescription: r.site.Description,
	})
}

func execute(tmpl *template.Template, v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// parseDate reads the feed's published text. Dates are shown in UTC.
func parseDate(published string) (time.Time, bool) {
	if strings.TrimSpace(published) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(published)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func plainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func canonicalLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English.String()
	}
	return tag.String()
}
