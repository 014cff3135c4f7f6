package realtime

import (
	"log/slog"
	"testing"
	"time"

	"parkpack/internal/domain"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifier feeds notifications into the bridge without a database.
type fakeNotifier struct {
	ch       chan *pq.Notification
	listened []string
	closed   bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan *pq.Notification, 16)}
}

func (f *fakeNotifier) Listen(channel string) error {
	f.listened = append(f.listened, channel)
	return nil
}

func (f *fakeNotifier) Unlisten(channel string) error { return nil }

func (f *fakeNotifier) NotificationChannel() <-chan *pq.Notification { return f.ch }

func (f *fakeNotifier) Close() error {
	f.closed = true
	return nil
}

func (f *fakeNotifier) push(collection, payload string) {
	f.ch <- &pq.Notification{Channel: channelPrefix + collection, Extra: payload}
}

func recvChange(t *testing.T, sub domain.Subscription) domain.Change {
	t.Helper()
	select {
	case c := <-sub.Changes():
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return domain.Change{}
	}
}

func assertNoChange(t *testing.T, sub domain.Subscription) {
	t.Helper()
	select {
	case c := <-sub.Changes():
		t.Fatalf("unexpected change: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBridge_Dispatch(t *testing.T) {
	ln := newFakeNotifier()
	b := NewBridge(ln, slog.Default())
	defer b.Close()

	sub, err := b.Subscribe(domain.CollectionPresences, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"parkpack_presences"}, ln.listened)

	ln.push("presences", `{"op":"insert","id":"pres-1","key":"park-1"}`)
	c := recvChange(t, sub)
	assert.Equal(t, domain.CollectionPresences, c.Collection)
	assert.Equal(t, domain.OpInsert, c.Op)
	assert.Equal(t, "pres-1", c.ID)
	assert.Equal(t, "park-1", c.Key)
}

func TestBridge_KeyFilter(t *testing.T) {
	ln := newFakeNotifier()
	b := NewBridge(ln, slog.Default())
	defer b.Close()

	mine, err := b.Subscribe(domain.CollectionMessages, "conv-1")
	require.NoError(t, err)
	other, err := b.Subscribe(domain.CollectionMessages, "conv-2")
	require.NoError(t, err)

	ln.push("messages", `{"op":"insert","id":"msg-1","key":"conv-1"}`)
	c := recvChange(t, mine)
	assert.Equal(t, "msg-1", c.ID)
	assertNoChange(t, other)

	// A keyless change reaches every subscriber.
	ln.push("messages", `{"op":"delete","id":"msg-2","key":""}`)
	recvChange(t, mine)
	recvChange(t, other)
}

func TestBridge_UnparseablePayloadDropped(t *testing.T) {
	ln := newFakeNotifier()
	b := NewBridge(ln, slog.Default())
	defer b.Close()

	sub, err := b.Subscribe(domain.CollectionEvents, "")
	require.NoError(t, err)

	ln.push("events", `not json`)
	assertNoChange(t, sub)

	ln.push("events", `{"op":"update","id":"ev-1","key":"park-1"}`)
	c := recvChange(t, sub)
	assert.Equal(t, "ev-1", c.ID)
}

func TestBridge_ReconnectWakesEveryone(t *testing.T) {
	ln := newFakeNotifier()
	b := NewBridge(ln, slog.Default())
	defer b.Close()

	sub, err := b.Subscribe(domain.CollectionMessages, "conv-1")
	require.NoError(t, err)

	// pq delivers nil after a reconnect. Even key-filtered subscribers get a
	// wake because notifications may have been missed.
	ln.ch <- nil
	c := recvChange(t, sub)
	assert.Empty(t, c.ID)
}

func TestBridge_SubscriptionClose(t *testing.T) {
	ln := newFakeNotifier()
	b := NewBridge(ln, slog.Default())
	defer b.Close()

	sub, err := b.Subscribe(domain.CollectionVotes, "")
	require.NoError(t, err)
	sub.Close()
	sub.Close() // safe to close twice

	_, ok := <-sub.Changes()
	assert.False(t, ok)
}

func TestBridge_Close(t *testing.T) {
	ln := newFakeNotifier()
	b := NewBridge(ln, slog.Default())

	sub, err := b.Subscribe(domain.CollectionVotes, "")
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.True(t, ln.closed)

	_, ok := <-sub.Changes()
	assert.False(t, ok)

	_, err = b.Subscribe(domain.CollectionVotes, "")
	require.Error(t, err)
}
