package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"parkpack/internal/domain"
)

// EventListView is the live list of active play dates at one park. Like
// EventView it carries a periodic tick; events drop off the list by expiring,
// and expiration emits no push on its own.
type EventListView struct {
	svc        domain.EventService
	locationID string
	sub        domain.Subscription
	refresh    time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	events []*domain.Event
	loaded bool
	err    error
	closed bool
	done   chan struct{}
}

// NewEventListView loads the active list once and starts watching.
func NewEventListView(ctx context.Context, svc domain.EventService, feed domain.ChangeFeed, locationID string, opts Options) (*EventListView, error) {
	sub, err := feed.Subscribe(domain.CollectionEvents, locationID)
	if err != nil {
		return nil, fmt.Errorf("subscribe events: %w", err)
	}
	v := &EventListView{
		svc:        svc,
		locationID: locationID,
		sub:        sub,
		refresh:    opts.refreshInterval(),
		logger:     opts.logger(),
		done:       make(chan struct{}),
	}
	v.reload(ctx)
	go v.watch()
	return v, nil
}

func (v *EventListView) watch() {
	ticker := time.NewTicker(v.refresh)
	defer ticker.Stop()
	for {
		select {
		case _, ok := <-v.sub.Changes():
			if !ok {
				return
			}
			v.reload(context.Background())
		case <-ticker.C:
			v.reload(context.Background())
		case <-v.done:
			return
		}
	}
}

func (v *EventListView) reload(ctx context.Context) {
	events, err := v.svc.ListActive(ctx, v.locationID)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		if !v.loaded {
			v.err = err
		}
		v.logger.Warn("event list reload failed", "location", v.locationID, "err", err)
		return
	}
	v.events = events
	v.loaded = true
	v.err = nil
}

// Snapshot returns the current active events.
func (v *EventListView) Snapshot() ([]*domain.Event, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	out := make([]*domain.Event, len(v.events))
	copy(out, v.events)
	return out, nil
}

// Close stops the watcher. Safe to call more than once.
func (v *EventListView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()
	close(v.done)
	v.sub.Close()
}
