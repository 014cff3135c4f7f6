// Package live holds self-refreshing views over the services layer. Each view
// owns a change-feed subscription and a background goroutine, reloads through
// the services on every trigger, and exposes a snapshot under a mutex. Change
// notifications are reload triggers only; no view merges a pushed payload.
package live

import (
	"log/slog"
	"time"
)

const defaultRefreshInterval = time.Minute

// Options configure behavior shared by the live views.
type Options struct {
	// RefreshInterval is the period of the background reload tick on event
	// views. While no pushes arrive, the tick is the only path that discovers
	// an event sailed past its end time.
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

func (o Options) refreshInterval() time.Duration {
	if o.RefreshInterval <= 0 {
		return defaultRefreshInterval
	}
	return o.RefreshInterval
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
