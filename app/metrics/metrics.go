package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "their_side_feed_fetches_total",
		Help: "Feed fetches by result",
	}, []string{"result"})

	feedFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "their_side_feed_fetch_duration_seconds",
		Help:    "Time spent fetching the feed",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	})

	pageBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "their_side_page_builds_total",
		Help: "Episode page builds by result",
	}, []string{"result"})

	pageRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "their_side_page_requests_total",
		Help: "Episode page requests by cache state",
	}, []string{"cache"})
)

const (
	BuildSuccess  = "success"
	BuildNotFound = "not_found"
	BuildError    = "error"

	CacheHit   = "hit"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

func ObserveFeedFetch(duration time.Duration, err error) {
	feedFetchDuration.Observe(duration.Seconds())
	if err != nil {
		feedFetches.WithLabelValues("error").Inc()
		return
	}
	feedFetches.WithLabelValues("success").Inc()
}

func PageBuilt(result string) {
	pageBuilds.WithLabelValues(result).Inc()
}

func PageRequested(cache string) {
	pageRequests.WithLabelValues(cache).Inc()
}
