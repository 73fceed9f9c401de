package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed configuration
	FeedURL        string  `long:"feed-url" env:"FEED_URL" default:"https://their-side-feed.vercel.app/api/feed" description:"RSS feed the episode pages are generated from"`
	FetchTimeout   int     `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	FetchRate      float64 `long:"fetch-rate" env:"FETCH_RATE" default:"5" description:"Maximum feed fetches per second (0 disables the cap)"`
	UserAgent      string  `long:"user-agent" env:"USER_AGENT" default:"Their Side/1.0" description:"User agent string for HTTP requests"`
	ExtractContent bool    `long:"extract-content" env:"EXTRACT_CONTENT" description:"Extract show notes from the episode link when the feed item has no content"`

	// Page generation
	DBPath            string `long:"db-path" env:"DB_PATH" default:":memory:" description:"SQLite database for rendered pages"`
	Revalidate        int    `long:"revalidate" env:"REVALIDATE" default:"10" description:"Seconds after which a rendered page is regenerated"`
	PrerenderInterval int    `long:"prerender-interval" env:"PRERENDER_INTERVAL" default:"0" description:"Seconds between full pre-render passes (0 renders at startup only)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background page generation workers"`

	// HTTP
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the site (e.g., https://their-side.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for on-demand revalidation (optional)"`

	// Application metadata
	SiteConfig string `long:"site-config" env:"SITE_CONFIG" description:"YAML file with site title, description and language"`
	Timezone   string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug      bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line flags and environment variables. It returns nil, nil
// when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs is Load with explicit arguments; nil means os.Args.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	site, err := LoadSite(raw.SiteConfig)
	if err != nil {
		return nil, err
	}

	cfg := &Cfg{
		FeedURL:           raw.FeedURL,
		FetchTimeout:      time.Duration(raw.FetchTimeout) * time.Second,
		FetchRate:         raw.FetchRate,
		UserAgent:         raw.UserAgent,
		ExtractContent:    raw.ExtractContent,
		DBPath:            raw.DBPath,
		Revalidate:        time.Duration(raw.Revalidate) * time.Second,
		PrerenderInterval: time.Duration(raw.PrerenderInterval) * time.Second,
		WorkerCount:       raw.WorkerCount,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		APIAccessKey:      raw.APIAccessKey,
		SiteConfig:        raw.SiteConfig,
		Site:              site,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func validate(raw rawCfg) error {
	if raw.FeedURL == "" {
		return fmt.Errorf("feed URL is required")
	}

	nonNegativeFields := map[string]int{
		"fetch timeout":      raw.FetchTimeout,
		"revalidate":         raw.Revalidate,
		"prerender interval": raw.PrerenderInterval,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if raw.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if raw.FetchRate < 0 {
		return fmt.Errorf("fetch rate must be non-negative")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
