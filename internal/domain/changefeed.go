package domain

// Collection names a backend collection the change feed can report on.
type Collection string

const (
	CollectionPresences   Collection = "presences"
	CollectionEvents      Collection = "events"
	CollectionRSVPs       Collection = "rsvps"
	CollectionVotes       Collection = "votes"
	CollectionFriendships Collection = "friendships"
	CollectionPhotos      Collection = "photos"
	CollectionReviews     Collection = "reviews"
	CollectionMessages    Collection = "messages"
)

// Op is the kind of row change a notification reports.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is one change-feed notification. Delivery is at-least-once and
// unordered relative to local writes, so consumers treat changes as reload
// triggers, never as payloads to merge.
type Change struct {
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
	ID         string     `json:"id"`
	// Key is the grouping identifier subscriptions filter on: the location for
	// presences/events/photos/reviews, the conversation for messages, the
	// event for rsvps. Empty when the emitter has none.
	Key string `json:"key"`
}

// Subscription is an owned handle on a filtered change stream. The owner is
// solely responsible for closing it; Close is safe to call more than once.
type Subscription interface {
	Changes() <-chan Change
	Close()
}

// ChangeFeed hands out per-collection subscriptions, optionally filtered by
// key. An empty key subscribes to every change in the collection.
type ChangeFeed interface {
	Subscribe(collection Collection, key string) (Subscription, error)
}
