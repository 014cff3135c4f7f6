package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"parkpack/internal/domain"
)

// EventView is the live detail of one play date with its RSVPs. It reloads on
// event and RSVP pushes, and additionally on a periodic tick: every reload
// runs the expiration check, so a quiet event still flips to completed once
// its end time passes.
type EventView struct {
	svc      domain.EventService
	eventID  string
	eventSub domain.Subscription
	rsvpSub  domain.Subscription
	refresh  time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	event  *domain.Event
	rsvps  []*domain.RSVP
	loaded bool
	err    error
	closed bool
	done   chan struct{}
}

// NewEventView loads the event once and starts watching.
func NewEventView(ctx context.Context, svc domain.EventService, feed domain.ChangeFeed, eventID string, opts Options) (*EventView, error) {
	eventSub, err := feed.Subscribe(domain.CollectionEvents, "")
	if err != nil {
		return nil, fmt.Errorf("subscribe events: %w", err)
	}
	rsvpSub, err := feed.Subscribe(domain.CollectionRSVPs, eventID)
	if err != nil {
		eventSub.Close()
		return nil, fmt.Errorf("subscribe rsvps: %w", err)
	}
	v := &EventView{
		svc:      svc,
		eventID:  eventID,
		eventSub: eventSub,
		rsvpSub:  rsvpSub,
		refresh:  opts.refreshInterval(),
		logger:   opts.logger(),
		done:     make(chan struct{}),
	}
	v.reload(ctx)
	go v.watch()
	return v, nil
}

func (v *EventView) watch() {
	ticker := time.NewTicker(v.refresh)
	defer ticker.Stop()
	for {
		select {
		case c, ok := <-v.eventSub.Changes():
			if !ok {
				return
			}
			// The events stream is unfiltered; only this event matters. A
			// change without an id is a reconnect wake and always reloads.
			if c.ID != "" && c.ID != v.eventID {
				continue
			}
			v.reload(context.Background())
		case _, ok := <-v.rsvpSub.Changes():
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

func (v *EventView) reload(ctx context.Context) {
	event, rsvps, err := v.svc.FetchWithExpirationCheck(ctx, v.eventID)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		if !v.loaded {
			v.err = err
		}
		v.logger.Warn("event reload failed", "event", v.eventID, "err", err)
		return
	}
	v.event = event
	v.rsvps = rsvps
	v.loaded = true
	v.err = nil
}

// Snapshot returns the current event and its RSVPs.
func (v *EventView) Snapshot() (*domain.Event, []*domain.RSVP, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, nil, v.err
	}
	rsvps := make([]*domain.RSVP, len(v.rsvps))
	copy(rsvps, v.rsvps)
	return v.event, rsvps, nil
}

// Close stops the watcher. Safe to call more than once.
func (v *EventView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()
	close(v.done)
	v.eventSub.Close()
	v.rsvpSub.Close()
}
