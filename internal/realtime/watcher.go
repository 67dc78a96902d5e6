package realtime

import (
	"context"
	"errors"
	"time"

	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const (
	DefaultPollInterval = 30 * time.Second
	// how long Run waits for the stream's hello before fetching anyway
	DefaultReadyTimeout = 10 * time.Second
)

var errStreamClosed = errors.New("realtime stream closed")

// Source streams a shop's change events. Ready closes once the server has
// registered the subscription. The error channel yields at most one error
// before the event and error channels close.
type Source interface {
	Stream(ctx context.Context, shopOwnerID string) (events <-chan model.ChangeEvent, ready <-chan struct{}, errs <-chan error)
}

type Fetcher interface {
	FetchJobs(ctx context.Context, shopOwnerID string) ([]*model.PrintJob, error)
}

// Watcher keeps a JobList in sync with a shop's queue. It applies streamed
// events and, once the stream fails, re-fetches the whole queue on a fixed
// interval for the rest of its life.
type Watcher struct {
	shopOwnerID  string
	list         *JobList
	source       Source
	fetcher      Fetcher
	pollInterval time.Duration
	readyTimeout time.Duration
	onChange     func([]*model.PrintJob)
	log          *logger.Logger
}

func NewWatcher(shopOwnerID string, source Source, fetcher Fetcher, pollInterval time.Duration, log *logger.Logger) *Watcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Watcher{
		shopOwnerID:  shopOwnerID,
		list:         NewJobList(),
		source:       source,
		fetcher:      fetcher,
		pollInterval: pollInterval,
		readyTimeout: DefaultReadyTimeout,
		log:          log.With("shop_owner_id", shopOwnerID),
	}
}

// OnChange registers fn to receive a snapshot after every change. Call before Run.
func (w *Watcher) OnChange(fn func([]*model.PrintJob)) {
	w.onChange = fn
}

func (w *Watcher) List() *JobList {
	return w.list
}

// Run blocks until ctx is done. The stream is subscribed before the first
// fetch so a change committed in between is still delivered; JobList drops
// events the fetch already reflects.
func (w *Watcher) Run(ctx context.Context) error {
	events, ready, errs := w.source.Stream(ctx, w.shopOwnerID)

	timeout := time.NewTimer(w.readyTimeout)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ready:
	case err, ok := <-errs:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if fetchErr := w.refresh(ctx); fetchErr != nil {
			w.log.Warn("initial job fetch failed", "error", fetchErr)
		}
		if !ok || err == nil {
			err = errStreamClosed
		}
		return w.poll(ctx, err)
	case <-timeout.C:
		w.log.Warn("realtime stream not ready, fetching anyway", "waited", w.readyTimeout)
	}

	if err := w.refresh(ctx); err != nil {
		w.log.Warn("initial job fetch failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				if errs == nil {
					return w.poll(ctx, errStreamClosed)
				}
				continue
			}
			if ev.ShopOwnerID != w.shopOwnerID {
				continue
			}
			if w.list.Apply(ev) {
				w.notify()
			}

		case err, ok := <-errs:
			if ok && err != nil {
				return w.poll(ctx, err)
			}
			errs = nil
			if events == nil {
				return w.poll(ctx, errStreamClosed)
			}
		}
	}
}

func (w *Watcher) poll(ctx context.Context, cause error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	w.log.Warn("realtime stream failed, falling back to polling",
		"interval", w.pollInterval,
		"error", cause,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil && ctx.Err() == nil {
				w.log.Warn("poll fetch failed", "error", err)
			}
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) error {
	jobs, err := w.fetcher.FetchJobs(ctx, w.shopOwnerID)
	if err != nil {
		return err
	}
	w.list.Reset(jobs)
	w.notify()
	return nil
}

func (w *Watcher) notify() {
	if w.onChange != nil {
		w.onChange(w.list.Snapshot())
	}
}
