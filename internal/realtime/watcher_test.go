package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"printhub/pkg/model"
)

type fakeSource struct {
	events chan model.ChangeEvent
	ready  chan struct{}
	errs   chan error
}

// newFakeSource returns a source that is already subscribed.
func newFakeSource() *fakeSource {
	f := newPendingSource()
	close(f.ready)
	return f
}

func newPendingSource() *fakeSource {
	return &fakeSource{
		events: make(chan model.ChangeEvent, 8),
		ready:  make(chan struct{}),
		errs:   make(chan error, 1),
	}
}

func (f *fakeSource) Stream(context.Context, string) (<-chan model.ChangeEvent, <-chan struct{}, <-chan error) {
	return f.events, f.ready, f.errs
}

type fakeFetcher struct {
	mu    sync.Mutex
	jobs  []*model.PrintJob
	calls atomic.Int32
}

func (f *fakeFetcher) FetchJobs(context.Context, string) ([]*model.PrintJob, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs, nil
}

func (f *fakeFetcher) set(jobs ...*model.PrintJob) {
	f.mu.Lock()
	f.jobs = jobs
	f.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_AppliesStreamedEvents(t *testing.T) {
	source := newFakeSource()
	fetcher := &fakeFetcher{}
	fetcher.set(job("a", 1, 1, model.JobStatusPending))

	w := NewWatcher("shop-1", source, fetcher, time.Hour, testLogger())
	var snapshots atomic.Int32
	w.OnChange(func([]*model.PrintJob) { snapshots.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	source.events <- event(model.ChangeInsert, job("b", 2, 2, model.JobStatusPending))
	other := event(model.ChangeInsert, job("z", 3, 3, model.JobStatusPending))
	other.ShopOwnerID = "shop-2"
	source.events <- other

	waitFor(t, func() bool { return w.List().Len() == 2 })
	if _, ok := w.List().Get("z"); ok {
		t.Error("event for another shop was applied")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if snapshots.Load() < 2 {
		t.Errorf("expected at least 2 change notifications, got %d", snapshots.Load())
	}
}

func TestWatcher_FallsBackToPolling(t *testing.T) {
	source := newFakeSource()
	fetcher := &fakeFetcher{}
	fetcher.set(job("a", 1, 1, model.JobStatusPending))

	w := NewWatcher("shop-1", source, fetcher, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, func() bool { return fetcher.calls.Load() == 1 })
	source.errs <- errors.New("channel error")

	fetcher.set(job("a", 1, 2, model.JobStatusQueued), job("b", 2, 2, model.JobStatusPending))
	waitFor(t, func() bool { return fetcher.calls.Load() >= 3 && w.List().Len() == 2 })

	got, _ := w.List().Get("a")
	if got.Status != model.JobStatusQueued {
		t.Errorf("poll did not refresh job a: %s", got.Status)
	}
}

func TestWatcher_ClosedStreamFallsBack(t *testing.T) {
	source := newFakeSource()
	fetcher := &fakeFetcher{}

	w := NewWatcher("shop-1", source, fetcher, 10*time.Millisecond, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	close(source.errs)
	close(source.events)

	waitFor(t, func() bool { return fetcher.calls.Load() >= 2 })
}

func TestWatcher_SubscribesBeforeFetching(t *testing.T) {
	source := newPendingSource()
	fetcher := &fakeFetcher{}
	fetcher.set(job("a", 1, 5, model.JobStatusQueued))

	w := NewWatcher("shop-1", source, fetcher, time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if fetcher.calls.Load() != 0 {
		t.Fatal("fetched before the stream was subscribed")
	}

	// committed after subscribing but missing from the fetch response
	source.events <- event(model.ChangeInsert, job("b", 2, 6, model.JobStatusPending))
	// older than the fetched row
	source.events <- event(model.ChangeUpdate, job("a", 1, 2, model.JobStatusPending))
	close(source.ready)

	waitFor(t, func() bool { return fetcher.calls.Load() == 1 && w.List().Len() == 2 })
	got, _ := w.List().Get("a")
	if got.Status != model.JobStatusQueued {
		t.Errorf("stale event overwrote fetched job: %s", got.Status)
	}
}

func TestWatcher_StreamFailsBeforeReady(t *testing.T) {
	source := newPendingSource()
	fetcher := &fakeFetcher{}
	fetcher.set(job("a", 1, 1, model.JobStatusPending))

	w := NewWatcher("shop-1", source, fetcher, 10*time.Millisecond, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	source.errs <- errors.New("401")
	waitFor(t, func() bool { return fetcher.calls.Load() >= 2 && w.List().Len() == 1 })
}

func TestWatcher_FetchesWhenHelloNeverArrives(t *testing.T) {
	source := newPendingSource()
	fetcher := &fakeFetcher{}
	fetcher.set(job("a", 1, 1, model.JobStatusPending))

	w := NewWatcher("shop-1", source, fetcher, time.Hour, testLogger())
	w.readyTimeout = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, func() bool { return w.List().Len() == 1 })
}
