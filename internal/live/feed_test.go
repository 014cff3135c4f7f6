package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parkpack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSub is a hand-operated subscription the tests push changes into.
type fakeSub struct {
	ch        chan domain.Change
	closeOnce sync.Once
}

func (s *fakeSub) Changes() <-chan domain.Change { return s.ch }

func (s *fakeSub) Close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

func (s *fakeSub) push(c domain.Change) { s.ch <- c }

type fakeFeed struct {
	mu   sync.Mutex
	subs map[domain.Collection]*fakeSub
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[domain.Collection]*fakeSub)}
}

func (f *fakeFeed) Subscribe(collection domain.Collection, key string) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{ch: make(chan domain.Change, 16)}
	f.subs[collection] = sub
	return sub, nil
}

func (f *fakeFeed) sub(collection domain.Collection) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[collection]
}

// fakeVoteSvc keeps vote state in memory so reloads observe backend truth.
type fakeVoteSvc struct {
	mu        sync.Mutex
	voters    map[string]map[string]bool
	toggleErr error
	// forced, when set, overrides the toggle result to simulate a concurrent
	// toggle from another device landing first.
	forced  *bool
	toggles int
}

func newFakeVoteSvc() *fakeVoteSvc {
	return &fakeVoteSvc{voters: make(map[string]map[string]bool)}
}

func (f *fakeVoteSvc) Toggle(ctx context.Context, kind domain.VoteKind, subjectID, voterID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	f.toggles++
	if f.voters[subjectID] == nil {
		f.voters[subjectID] = make(map[string]bool)
	}
	voted := !f.voters[subjectID][voterID]
	if f.forced != nil {
		voted = *f.forced
	}
	if voted {
		f.voters[subjectID][voterID] = true
	} else {
		delete(f.voters[subjectID], voterID)
	}
	return voted, nil
}

func (f *fakeVoteSvc) Unvote(ctx context.Context, kind domain.VoteKind, subjectID, voterID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.voters[subjectID], voterID)
	return nil
}

func (f *fakeVoteSvc) TallyFor(ctx context.Context, kind domain.VoteKind, subjectIDs []string, viewerID string) (map[string]domain.Tally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.Tally, len(subjectIDs))
	for _, id := range subjectIDs {
		out[id] = domain.Tally{
			Count:     len(f.voters[id]),
			VotedByMe: f.voters[id][viewerID],
		}
	}
	return out, nil
}

type fakeMediaSvc struct {
	mu      sync.Mutex
	photos  []*domain.Photo
	votes   domain.VoteService
	loads   int
	listErr error
}

func (f *fakeMediaSvc) AddPhoto(ctx context.Context, p *domain.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, p)
	return nil
}

func (f *fakeMediaSvc) AddReview(ctx context.Context, r *domain.Review) error { return nil }

func (f *fakeMediaSvc) ListPhotos(ctx context.Context, locationID, viewerID string) ([]*domain.PhotoWithTally, error) {
	f.mu.Lock()
	f.loads++
	if f.listErr != nil {
		err := f.listErr
		f.mu.Unlock()
		return nil, err
	}
	photos := make([]*domain.Photo, len(f.photos))
	copy(photos, f.photos)
	f.mu.Unlock()

	ids := make([]string, len(photos))
	for i, p := range photos {
		ids[i] = p.ID
	}
	tallies, err := f.votes.TallyFor(ctx, domain.VotePhoto, ids, viewerID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.PhotoWithTally, len(photos))
	for i, p := range photos {
		out[i] = &domain.PhotoWithTally{Photo: p, Tally: tallies[p.ID]}
	}
	return out, nil
}

func (f *fakeMediaSvc) ListReviews(ctx context.Context, locationID, viewerID string) ([]*domain.ReviewWithTally, error) {
	return nil, nil
}

func (f *fakeMediaSvc) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func photoFeedFixture(t *testing.T) (*VoteFeedView[*domain.PhotoWithTally], *fakeMediaSvc, *fakeVoteSvc, *fakeFeed) {
	t.Helper()
	votes := newFakeVoteSvc()
	media := &fakeMediaSvc{
		photos: []*domain.Photo{
			{ID: "photo-1", LocationID: "park-1", UploaderID: "user-2", URL: "https://img/1"},
		},
		votes: votes,
	}
	feed := newFakeFeed()
	view, err := NewPhotoFeedView(context.Background(), media, votes, feed, "park-1", "user-1", Options{})
	require.NoError(t, err)
	t.Cleanup(view.Close)
	return view, media, votes, feed
}

func TestVoteFeedView_InitialLoad(t *testing.T) {
	view, _, votes, _ := photoFeedFixture(t)

	votes.mu.Lock()
	votes.voters["photo-1"] = map[string]bool{"user-2": true}
	votes.mu.Unlock()

	// State written after construction is invisible until a trigger arrives.
	items, err := view.Snapshot()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.Tally{}, items[0].Tally)
}

func TestVoteFeedView_ToggleOptimistic(t *testing.T) {
	view, media, votes, _ := photoFeedFixture(t)

	require.NoError(t, view.Toggle(context.Background(), "photo-1"))
	items, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Count: 1, VotedByMe: true}, items[0].Tally)

	require.NoError(t, view.Toggle(context.Background(), "photo-1"))
	items, err = view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Count: 0, VotedByMe: false}, items[0].Tally)

	// Both toggles matched the optimistic guess, so no reload was needed.
	assert.Equal(t, 1, media.loadCount())
	assert.Equal(t, 2, votes.toggles)
}

func TestVoteFeedView_SnapshotImmutable(t *testing.T) {
	view, _, _, _ := photoFeedFixture(t)

	before, err := view.Snapshot()
	require.NoError(t, err)
	require.NoError(t, view.Toggle(context.Background(), "photo-1"))

	// The toggle mutates the view's copy, not the one already handed out.
	assert.Equal(t, domain.Tally{}, before[0].Tally)

	after, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Count: 1, VotedByMe: true}, after[0].Tally)
}

func TestVoteFeedView_ToggleUnknownSubject(t *testing.T) {
	view, _, votes, _ := photoFeedFixture(t)

	err := view.Toggle(context.Background(), "photo-999")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, votes.toggles)
}

func TestVoteFeedView_ToggleErrorRevertsToBackend(t *testing.T) {
	view, media, votes, _ := photoFeedFixture(t)

	votes.mu.Lock()
	votes.toggleErr = errors.New("backend down")
	votes.mu.Unlock()

	err := view.Toggle(context.Background(), "photo-1")
	require.Error(t, err)

	// The optimistic flip was rolled back by a reload from backend truth.
	items, snapErr := view.Snapshot()
	require.NoError(t, snapErr)
	assert.Equal(t, domain.Tally{Count: 0, VotedByMe: false}, items[0].Tally)
	assert.Equal(t, 2, media.loadCount())
}

func TestVoteFeedView_ToggleMismatchReloads(t *testing.T) {
	view, media, votes, _ := photoFeedFixture(t)

	// The backend reports "removed" even though the view predicted "created":
	// another device toggled in between.
	forced := false
	votes.mu.Lock()
	votes.forced = &forced
	votes.mu.Unlock()

	require.NoError(t, view.Toggle(context.Background(), "photo-1"))
	items, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{Count: 0, VotedByMe: false}, items[0].Tally)
	assert.Equal(t, 2, media.loadCount())
}

func TestVoteFeedView_PushTriggersReload(t *testing.T) {
	view, media, _, feed := photoFeedFixture(t)

	require.NoError(t, media.AddPhoto(context.Background(), &domain.Photo{ID: "photo-2", LocationID: "park-1"}))
	feed.sub(domain.CollectionPhotos).push(domain.Change{
		Collection: domain.CollectionPhotos,
		Op:         domain.OpInsert,
		ID:         "photo-2",
		Key:        "park-1",
	})

	require.Eventually(t, func() bool {
		items, err := view.Snapshot()
		return err == nil && len(items) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestVoteFeedView_VotePushTriggersReload(t *testing.T) {
	view, _, votes, feed := photoFeedFixture(t)

	// Someone else's vote lands; the view learns about it via the feed.
	votes.mu.Lock()
	votes.voters["photo-1"] = map[string]bool{"user-2": true}
	votes.mu.Unlock()
	feed.sub(domain.CollectionVotes).push(domain.Change{
		Collection: domain.CollectionVotes,
		Op:         domain.OpInsert,
		ID:         "photo-1",
	})

	require.Eventually(t, func() bool {
		items, err := view.Snapshot()
		return err == nil && items[0].Tally.Count == 1 && !items[0].Tally.VotedByMe
	}, time.Second, 10*time.Millisecond)
}

func TestVoteFeedView_FirstLoadFailure(t *testing.T) {
	votes := newFakeVoteSvc()
	media := &fakeMediaSvc{votes: votes, listErr: errors.New("backend down")}
	feed := newFakeFeed()
	view, err := NewPhotoFeedView(context.Background(), media, votes, feed, "park-1", "user-1", Options{})
	require.NoError(t, err)
	defer view.Close()

	_, err = view.Snapshot()
	require.Error(t, err)

	// Once a reload succeeds the error clears.
	media.mu.Lock()
	media.listErr = nil
	media.mu.Unlock()
	feed.sub(domain.CollectionPhotos).push(domain.Change{Collection: domain.CollectionPhotos, Op: domain.OpInsert})

	require.Eventually(t, func() bool {
		_, err := view.Snapshot()
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestVoteFeedView_Close(t *testing.T) {
	view, _, _, _ := photoFeedFixture(t)

	view.Close()
	view.Close() // safe to call twice

	err := view.Toggle(context.Background(), "photo-1")
	require.Error(t, err)
}
