package database

import (
	"time"
)

// Page is a rendered episode page as stored between regenerations.
type Page struct {
	EpisodeID   string
	HTML        []byte
	Props       []byte // JSON-encoded page props
	GeneratedAt time.Time
}
