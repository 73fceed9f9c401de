package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// PrerenderTask enumerates every episode path and enqueues a build for each.
// When the queue is full the build runs inline on the prerender worker, so
// every path is built and a single worker never waits on itself.
type PrerenderTask struct {
	Task
	builder PageBuilder
	enqueue func(TaskInterface) error
}

func NewPrerenderTask(builder PageBuilder, enqueue func(TaskInterface) error) *PrerenderTask {
	return &PrerenderTask{
		Task:    NewTask(TaskTypePrerender, ""),
		builder: builder,
		enqueue: enqueue,
	}
}

func (t *PrerenderTask) Execute(ctx context.Context) error {
	paths, err := t.builder.StaticPaths(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate paths: %w", err)
	}

	enqueued, inline, failed := 0, 0, 0
	for _, id := range paths.EpisodeIDs() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("prerender interrupted after %d of %d paths: %w", enqueued+inline+failed, len(paths.Paths), err)
		}

		if err := t.enqueue(NewBuildPageTask(id, t.builder)); err == nil {
			enqueued++
			continue
		}

		if _, err := t.builder.Build(ctx, id); err != nil {
			slog.Warn("Inline page build failed", "episode", id, "error", err)
			failed++
			continue
		}
		inline++
	}

	slog.Info("Task completed",
		"type", "Prerender",
		"duration", t.GetDuration(),
		"paths", len(paths.Paths),
		"enqueued", enqueued,
		"inline", inline,
		"failed", failed,
		"fallback", paths.Fallback)

	return nil
}

// BuildPageTask renders one episode page unconditionally.
type BuildPageTask struct {
	Task
	builder PageBuilder
}

func NewBuildPageTask(episodeID string, builder PageBuilder) *BuildPageTask {
	return &BuildPageTask{
		Task:    NewTask(TaskTypeBuildPage, episodeID),
		builder: builder,
	}
}

func (t *BuildPageTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	page, err := t.builder.Build(ctx, t.EpisodeID)
	if err != nil {
		return fmt.Errorf("failed to build page: %w", err)
	}

	slog.Debug("Task completed",
		"type", "BuildPage",
		"episode", t.EpisodeID,
		"found", page != nil,
		"duration", t.GetDuration())

	return nil
}

// RevalidatePageTask regenerates one episode page if it has gone stale.
type RevalidatePageTask struct {
	Task
	builder PageBuilder
}

func NewRevalidatePageTask(episodeID string, builder PageBuilder) *RevalidatePageTask {
	return &RevalidatePageTask{
		Task:    NewTask(TaskTypeRevalidatePage, episodeID),
		builder: builder,
	}
}

func (t *RevalidatePageTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.builder.Revalidate(ctx, t.EpisodeID); err != nil {
		return fmt.Errorf("failed to revalidate page: %w", err)
	}

	slog.Debug("Task completed",
		"type", "RevalidatePage",
		"episode", t.EpisodeID,
		"duration", t.GetDuration())

	return nil
}
