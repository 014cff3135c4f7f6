package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"parkpack/internal/domain"

	"github.com/lib/pq"
)

// channelPrefix namespaces the NOTIFY channels this app listens on.
const channelPrefix = "parkpack_"

// Notifier is the slice of pq.Listener the bridge needs. Kept narrow so tests
// can feed notifications without a database.
type Notifier interface {
	Listen(channel string) error
	Unlisten(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

// NewListener opens a pq.Listener on the database the repositories use.
// Reconnect events are logged; delivery stays at-least-once either way.
func NewListener(dbURL string, logger *slog.Logger) *pq.Listener {
	return pq.NewListener(dbURL, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("change feed listener event", "event", int(ev), "err", err)
		}
	})
}

// Bridge fans change-feed notifications out to per-collection, optionally
// key-filtered subscriptions. Notifications are triggers, not payloads:
// consumers reload from the repositories on every delivery.
type Bridge struct {
	ln     Notifier
	logger *slog.Logger

	mu        sync.Mutex
	subs      map[domain.Collection]map[*subscription]struct{}
	listening map[domain.Collection]bool
	closed    bool

	done chan struct{}
}

// NewBridge starts the dispatch loop over the given notifier.
func NewBridge(ln Notifier, logger *slog.Logger) *Bridge {
	b := &Bridge{
		ln:        ln,
		logger:    logger,
		subs:      make(map[domain.Collection]map[*subscription]struct{}),
		listening: make(map[domain.Collection]bool),
		done:      make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe registers a subscription for the collection. An empty key
// receives every change in the collection.
func (b *Bridge) Subscribe(collection domain.Collection, key string) (domain.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("change feed closed")
	}
	if !b.listening[collection] {
		if err := b.ln.Listen(channelPrefix + string(collection)); err != nil {
			return nil, fmt.Errorf("listen %s: %w", collection, err)
		}
		b.listening[collection] = true
	}
	sub := &subscription{
		bridge:     b,
		collection: collection,
		key:        key,
		ch:         make(chan domain.Change, 16),
	}
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[*subscription]struct{})
	}
	b.subs[collection][sub] = struct{}{}
	return sub, nil
}

// Close tears the bridge down and closes every open subscription.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, set := range b.subs {
		for sub := range set {
			close(sub.ch)
		}
	}
	b.subs = nil
	b.mu.Unlock()

	close(b.done)
	return b.ln.Close()
}

func (b *Bridge) run() {
	notifications := b.ln.NotificationChannel()
	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if n == nil {
				// pq delivers nil after a reconnect; notifications may have
				// been missed, so wake every subscriber to reload.
				b.wakeAll()
				continue
			}
			b.dispatch(n)
		case <-b.done:
			return
		}
	}
}

func (b *Bridge) dispatch(n *pq.Notification) {
	collection := domain.Collection(n.Channel[len(channelPrefix):])
	var change domain.Change
	if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
		b.logger.Warn("dropping unparseable change notification", "channel", n.Channel, "err", err)
		return
	}
	change.Collection = collection

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[collection] {
		if sub.key != "" && change.Key != "" && sub.key != change.Key {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			// Subscriber already has a pending trigger; coalescing is safe
			// because every delivery means "reload", nothing more.
		}
	}
}

func (b *Bridge) wakeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for collection, set := range b.subs {
		for sub := range set {
			select {
			case sub.ch <- domain.Change{Collection: collection}:
			default:
			}
		}
	}
}

type subscription struct {
	bridge     *Bridge
	collection domain.Collection
	key        string
	ch         chan domain.Change
	closeOnce  sync.Once
}

func (s *subscription) Changes() <-chan domain.Change {
	return s.ch
}

func (s *subscription) Close() {
	s.closeOnce.Do(func() {
		b := s.bridge
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		if set, ok := b.subs[s.collection]; ok {
			delete(set, s)
		}
		close(s.ch)
	})
}
