package cfg

import "time"

type Cfg struct {
	// Feed configuration
	FeedURL        string
	FetchTimeout   time.Duration
	FetchRate      float64
	UserAgent      string
	ExtractContent bool

	// Page generation
	DBPath            string
	Revalidate        time.Duration
	PrerenderInterval time.Duration
	WorkerCount       int

	// HTTP
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Application metadata
	SiteConfig string
	Site       *Site
	Timezone   string
	Debug      bool
	Version    string
}

// Site holds presentation settings loaded from the optional YAML site file.
type Site struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}
