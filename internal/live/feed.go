package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"parkpack/internal/domain"
)

// VoteFeedView is a live, votable feed of park media. Toggling applies the
// flip to the cached tally immediately, then settles against the backend:
// the backend answer wins whenever it disagrees with the optimistic guess.
type VoteFeedView[T any] struct {
	load     func(ctx context.Context) ([]T, error)
	tallyOf  func(item T) (subjectID string, tally *domain.Tally)
	clone    func(item T) T
	votes    domain.VoteService
	kind     domain.VoteKind
	viewerID string
	mediaSub domain.Subscription
	voteSub  domain.Subscription
	logger   *slog.Logger

	mu     sync.Mutex
	items  []T
	loaded bool
	err    error
	closed bool
	done   chan struct{}
}

// PhotoFeedView and ReviewFeedView name the two concrete feed shapes.
type (
	PhotoFeedView  = VoteFeedView[*domain.PhotoWithTally]
	ReviewFeedView = VoteFeedView[*domain.ReviewWithTally]
)

// NewPhotoFeedView builds a live feed of one park's photos.
func NewPhotoFeedView(ctx context.Context, media domain.MediaService, votes domain.VoteService, feed domain.ChangeFeed, locationID, viewerID string, opts Options) (*VoteFeedView[*domain.PhotoWithTally], error) {
	return newVoteFeedView(ctx, feed, domain.CollectionPhotos, locationID, &VoteFeedView[*domain.PhotoWithTally]{
		load: func(ctx context.Context) ([]*domain.PhotoWithTally, error) {
			return media.ListPhotos(ctx, locationID, viewerID)
		},
		tallyOf: func(p *domain.PhotoWithTally) (string, *domain.Tally) {
			return p.Photo.ID, &p.Tally
		},
		clone: func(p *domain.PhotoWithTally) *domain.PhotoWithTally {
			c := *p
			return &c
		},
		votes:    votes,
		kind:     domain.VotePhoto,
		viewerID: viewerID,
		logger:   opts.logger(),
		done:     make(chan struct{}),
	})
}

// NewReviewFeedView builds a live feed of one park's reviews.
func NewReviewFeedView(ctx context.Context, media domain.MediaService, votes domain.VoteService, feed domain.ChangeFeed, locationID, viewerID string, opts Options) (*VoteFeedView[*domain.ReviewWithTally], error) {
	return newVoteFeedView(ctx, feed, domain.CollectionReviews, locationID, &VoteFeedView[*domain.ReviewWithTally]{
		load: func(ctx context.Context) ([]*domain.ReviewWithTally, error) {
			return media.ListReviews(ctx, locationID, viewerID)
		},
		tallyOf: func(r *domain.ReviewWithTally) (string, *domain.Tally) {
			return r.Review.ID, &r.Tally
		},
		clone: func(r *domain.ReviewWithTally) *domain.ReviewWithTally {
			c := *r
			return &c
		},
		votes:    votes,
		kind:     domain.VoteReview,
		viewerID: viewerID,
		logger:   opts.logger(),
		done:     make(chan struct{}),
	})
}

func newVoteFeedView[T any](ctx context.Context, feed domain.ChangeFeed, collection domain.Collection, locationID string, v *VoteFeedView[T]) (*VoteFeedView[T], error) {
	mediaSub, err := feed.Subscribe(collection, locationID)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}
	voteSub, err := feed.Subscribe(domain.CollectionVotes, "")
	if err != nil {
		mediaSub.Close()
		return nil, fmt.Errorf("subscribe votes: %w", err)
	}
	v.mediaSub = mediaSub
	v.voteSub = voteSub
	v.reload(ctx)
	go v.watch()
	return v, nil
}

func (v *VoteFeedView[T]) watch() {
	for {
		select {
		case _, ok := <-v.mediaSub.Changes():
			if !ok {
				return
			}
			v.reload(context.Background())
		case _, ok := <-v.voteSub.Changes():
			if !ok {
				return
			}
			v.reload(context.Background())
		case <-v.done:
			return
		}
	}
}

func (v *VoteFeedView[T]) reload(ctx context.Context) {
	items, err := v.load(ctx)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		if !v.loaded {
			v.err = err
		}
		v.logger.Warn("feed reload failed", "kind", v.kind, "err", err)
		return
	}
	v.items = items
	v.loaded = true
	v.err = nil
}

// Toggle flips the viewer's vote on the subject. The cached tally moves first
// so the tap feels instant; the backend result then confirms or corrects it.
func (v *VoteFeedView[T]) Toggle(ctx context.Context, subjectID string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return fmt.Errorf("view closed")
	}
	var predicted bool
	found := false
	for _, item := range v.items {
		id, tally := v.tallyOf(item)
		if id != subjectID {
			continue
		}
		found = true
		if tally.VotedByMe {
			tally.Count--
			tally.VotedByMe = false
		} else {
			tally.Count++
			tally.VotedByMe = true
		}
		predicted = tally.VotedByMe
		break
	}
	v.mu.Unlock()
	if !found {
		return domain.ErrNotFound
	}

	voted, err := v.votes.Toggle(ctx, v.kind, subjectID, v.viewerID)
	if err != nil {
		// The optimistic flip may be a lie now; fall back to backend truth.
		v.reload(ctx)
		return err
	}
	if voted != predicted {
		// Someone else's toggle landed in between. The reload also fixes the
		// count, which the flip alone cannot know.
		v.reload(ctx)
	}
	return nil
}

// Snapshot returns a copy of the current feed items. Tallies are cloned so a
// later Toggle cannot mutate a snapshot the caller is still holding.
func (v *VoteFeedView[T]) Snapshot() ([]T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	out := make([]T, len(v.items))
	for i, item := range v.items {
		out[i] = v.clone(item)
	}
	return out, nil
}

// Close stops the watcher. Safe to call more than once.
func (v *VoteFeedView[T]) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()
	close(v.done)
	v.mediaSub.Close()
	v.voteSub.Close()
}
