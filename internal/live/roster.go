package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"parkpack/internal/domain"
)

// RosterView is the live "who's here now" list for one park. It reloads on
// every presence change pushed for the location.
type RosterView struct {
	svc        domain.PresenceService
	locationID string
	sub        domain.Subscription
	logger     *slog.Logger

	mu      sync.Mutex
	entries []*domain.RosterEntry
	loaded  bool
	err     error
	closed  bool
	done    chan struct{}
}

// NewRosterView loads the roster once and starts watching for changes.
func NewRosterView(ctx context.Context, svc domain.PresenceService, feed domain.ChangeFeed, locationID string, opts Options) (*RosterView, error) {
	sub, err := feed.Subscribe(domain.CollectionPresences, locationID)
	if err != nil {
		return nil, fmt.Errorf("subscribe presences: %w", err)
	}
	v := &RosterView{
		svc:        svc,
		locationID: locationID,
		sub:        sub,
		logger:     opts.logger(),
		done:       make(chan struct{}),
	}
	v.reload(ctx)
	go v.watch()
	return v, nil
}

func (v *RosterView) watch() {
	for {
		select {
		case _, ok := <-v.sub.Changes():
			if !ok {
				return
			}
			v.reload(context.Background())
		case <-v.done:
			return
		}
	}
}

func (v *RosterView) reload(ctx context.Context) {
	entries, err := v.svc.ListRoster(ctx, v.locationID)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		// A reload that raced Close must not resurrect state.
		return
	}
	if err != nil {
		// Keep showing the previous roster; surface the error only when there
		// is nothing to show yet.
		if !v.loaded {
			v.err = err
		}
		v.logger.Warn("roster reload failed", "location", v.locationID, "err", err)
		return
	}
	v.entries = entries
	v.loaded = true
	v.err = nil
}

// Snapshot returns the current roster. The error is non-nil only when the
// first load failed and no data has ever been shown.
func (v *RosterView) Snapshot() ([]*domain.RosterEntry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	out := make([]*domain.RosterEntry, len(v.entries))
	copy(out, v.entries)
	return out, nil
}

// Close stops the watcher. Safe to call more than once.
func (v *RosterView) Close() {
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
