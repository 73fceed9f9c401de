package tasks

import (
	"context"

	"github.com/lysyi3m/their-side/app/database"
	"github.com/lysyi3m/their-side/app/pages"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Example usage:
//
//	scheduler := NewScheduler(builder, workerCount, prerenderInterval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRevalidatePageTask(id, builder))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// PageBuilder is what page tasks need from the static generation lifecycle.
type PageBuilder interface {
	StaticPaths(ctx context.Context) (*pages.Paths, error)
	Build(ctx context.Context, id string) (*database.Page, error)
	Revalidate(ctx context.Context, id string) error
}

var _ PageBuilder = (*pages.Builder)(nil)
