package api

import (
	"github.com/lysyi3m/their-side/app/database"
	"github.com/lysyi3m/their-side/app/page"
	"github.com/lysyi3m/their-side/app/pages"
	"github.com/lysyi3m/their-side/app/tasks"
)

// ErrorPages renders the HTML responses for missing episodes and failed builds.
type ErrorPages interface {
	NotFound() ([]byte, error)
	Failure() ([]byte, error)
}

var _ ErrorPages = (*page.Renderer)(nil)

type Handler struct {
	builder    *pages.Builder
	errorPages ErrorPages
	pageRepo   database.PageRepository
	scheduler  tasks.TaskSchedulerInterface
	feedSource string
	version    string
}
