package tasks

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/their-side/app/database"
	"github.com/lysyi3m/their-side/app/pages"
)

// MockPageBuilder records which pages were built or revalidated.
type MockPageBuilder struct {
	mu          sync.Mutex
	ids         []string
	pathsErr    error
	buildErr    error
	built       []string
	revalidated []string
	done        chan string
}

func newMockPageBuilder(ids ...string) *MockPageBuilder {
	return &MockPageBuilder{ids: ids, done: make(chan string, 100)}
}

func (m *MockPageBuilder) StaticPaths(ctx context.Context) (*pages.Paths, error) {
	if m.pathsErr != nil {
		return nil, m.pathsErr
	}
	paths := &pages.Paths{Fallback: pages.FallbackBlocking}
	for _, id := range m.ids {
		paths.Paths = append(paths.Paths, pages.Path{Params: pages.Params{Episode: id}})
	}
	return paths, nil
}

func (m *MockPageBuilder) Build(ctx context.Context, id string) (*database.Page, error) {
	m.mu.Lock()
	m.built = append(m.built, id)
	err := m.buildErr
	m.mu.Unlock()

	m.done <- "build:" + id
	if err != nil {
		return nil, err
	}
	return &database.Page{EpisodeID: id}, nil
}

func (m *MockPageBuilder) Revalidate(ctx context.Context, id string) error {
	m.mu.Lock()
	m.revalidated = append(m.revalidated, id)
	m.mu.Unlock()

	m.done <- "revalidate:" + id
	return nil
}

func waitFor(t *testing.T, ch chan string, count int) []string {
	t.Helper()

	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < count {
		select {
		case event := <-ch:
			got = append(got, event)
		case <-timeout:
			t.Fatalf("Timed out waiting for %d events, got %v", count, got)
		}
	}
	return got
}

func TestSchedulerPrerendersAllPathsOnStart(t *testing.T) {
	builder := newMockPageBuilder("1", "2", "3")
	scheduler := NewScheduler(builder, 2, 0)

	scheduler.Start()
	defer scheduler.Stop()

	events := waitFor(t, builder.done, 3)

	seen := make(map[string]bool)
	for _, event := range events {
		seen[event] = true
	}
	for _, expected := range []string{"build:1", "build:2", "build:3"} {
		if !seen[expected] {
			t.Errorf("Expected event %s, got %v", expected, events)
		}
	}
}

func TestSchedulerPrerendersMoreEpisodesThanQueueHolds(t *testing.T) {
	ids := make([]string, 500)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	builder := newMockPageBuilder(ids...)
	scheduler := NewScheduler(builder, 2, 0)
	if len(ids) <= cap(scheduler.taskQueue) {
		t.Fatalf("Expected more episodes than queue capacity %d", cap(scheduler.taskQueue))
	}

	scheduler.Start()
	defer scheduler.Stop()

	events := waitFor(t, builder.done, len(ids))

	seen := make(map[string]bool)
	for _, event := range events {
		seen[event] = true
	}
	if len(seen) != len(ids) {
		t.Errorf("Expected %d distinct page builds, got %d", len(ids), len(seen))
	}
	for _, id := range []string{"1", "301", "500"} {
		if !seen["build:"+id] {
			t.Errorf("Expected episode %s to be built", id)
		}
	}
}

func TestPrerenderTaskBuildsInlineWhenQueueFull(t *testing.T) {
	builder := newMockPageBuilder("1", "2", "3")
	queueFull := func(TaskInterface) error { return errors.New("task queue is full") }

	task := NewPrerenderTask(builder, queueFull)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	builder.mu.Lock()
	defer builder.mu.Unlock()
	expected := []string{"1", "2", "3"}
	if !reflect.DeepEqual(builder.built, expected) {
		t.Errorf("Expected inline builds %v, got %v", expected, builder.built)
	}
}

func TestPrerenderTaskStopsOnCancelledContext(t *testing.T) {
	builder := newMockPageBuilder("1", "2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewPrerenderTask(builder, func(TaskInterface) error { return nil })
	if err := task.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSchedulerRunsRevalidateTask(t *testing.T) {
	builder := newMockPageBuilder()
	scheduler := NewScheduler(builder, 1, 0)

	scheduler.Start()
	defer scheduler.Stop()

	if err := scheduler.EnqueueTask(NewRevalidatePageTask("42", builder)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	events := waitFor(t, builder.done, 1)
	if events[0] != "revalidate:42" {
		t.Errorf("Expected revalidate:42, got %v", events)
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	builder := newMockPageBuilder()
	builder.buildErr = errors.New("feed unavailable")
	scheduler := NewScheduler(builder, 1, 0)

	scheduler.Start()
	defer scheduler.Stop()

	if err := scheduler.EnqueueTask(NewBuildPageTask("7", builder)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// First attempt plus one retry after a one second delay.
	events := waitFor(t, builder.done, 2)
	if events[0] != "build:7" || events[1] != "build:7" {
		t.Errorf("Expected the build to be retried, got %v", events)
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	builder := newMockPageBuilder()
	scheduler := NewScheduler(builder, 1, 0)
	scheduler.Start()
	scheduler.Stop()

	if err := scheduler.EnqueueTask(NewBuildPageTask("1", builder)); err == nil {
		t.Error("Expected error when enqueueing on a stopped scheduler")
	}
}

func TestEnqueueQueueFull(t *testing.T) {
	builder := newMockPageBuilder()
	scheduler := NewScheduler(builder, 1, 0)
	defer scheduler.Stop()

	// Not started: nothing drains the queue.
	var err error
	for i := 0; i < cap(scheduler.taskQueue)+1; i++ {
		err = scheduler.EnqueueTask(NewBuildPageTask("1", builder))
	}
	if err == nil {
		t.Error("Expected error when the task queue is full")
	}
}

func TestPrerenderTaskFailsOnFeedError(t *testing.T) {
	builder := newMockPageBuilder()
	builder.pathsErr = errors.New("feed unavailable")

	task := NewPrerenderTask(builder, func(TaskInterface) error { return nil })
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected prerender to fail when paths cannot be enumerated")
	}
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeBuildPage, "1")

	if task.GetEpisodeID() != "1" {
		t.Errorf("Expected episode '1', got '%s'", task.GetEpisodeID())
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}
	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected no retries left")
	}
}
