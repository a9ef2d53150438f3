package hub

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle records deliveries and can be made to fail on demand
type fakeHandle struct {
	id   string
	mu   sync.Mutex
	sent [][]byte
	err  error
}

func newFakeHandle(id string) *fakeHandle {
	return &fakeHandle{id: id}
}

func (f *fakeHandle) ID() string { return f.id }

func (f *fakeHandle) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeHandle) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestRegistry_JoinLeave(t *testing.T) {
	r := NewRegistry("test")
	a := newFakeHandle("a")
	b := newFakeHandle("b")

	r.Join(1, a)
	r.Join(1, b)
	assert.Equal(t, 2, r.RoomSize(1))
	assert.Equal(t, 1, r.RoomCount())

	// Joining twice must not inflate the member count
	r.Join(1, a)
	assert.Equal(t, 2, r.RoomSize(1))

	r.Leave(1, a)
	assert.Equal(t, 1, r.RoomSize(1))

	// Leaving when absent is a no-op
	r.Leave(1, a)
	assert.Equal(t, 1, r.RoomSize(1))

	r.Leave(1, b)
	assert.Equal(t, 0, r.RoomSize(1))
	assert.Equal(t, 0, r.RoomCount(), "empty room entry should be dropped")
}

func TestRegistry_BroadcastDeliversToAllMembers(t *testing.T) {
	r := NewRegistry("test")
	members := make([]*fakeHandle, 5)
	for i := range members {
		members[i] = newFakeHandle(fmt.Sprintf("h%d", i))
		r.Join(7, members[i])
	}

	other := newFakeHandle("other-room")
	r.Join(8, other)

	r.Broadcast(7, []byte("hello"))

	for _, h := range members {
		assert.Equal(t, 1, h.received())
	}
	assert.Equal(t, 0, other.received(), "broadcast must not cross rooms")
}

func TestRegistry_BroadcastExceptSkipsSender(t *testing.T) {
	r := NewRegistry("test")
	sender := newFakeHandle("sender")
	peer := newFakeHandle("peer")
	r.Join(1, sender)
	r.Join(1, peer)

	r.BroadcastExcept(1, []byte("offer"), sender)

	assert.Equal(t, 0, sender.received())
	assert.Equal(t, 1, peer.received())
}

func TestRegistry_BroadcastRemovesFailedHandles(t *testing.T) {
	r := NewRegistry("test")
	healthy := newFakeHandle("healthy")
	broken := newFakeHandle("broken")
	broken.err = errors.New("send buffer full")

	r.Join(1, healthy)
	r.Join(1, broken)

	r.Broadcast(1, []byte("first"))

	// The healthy member still got the payload the broken one missed
	assert.Equal(t, 1, healthy.received())
	assert.Equal(t, 1, r.RoomSize(1), "failed handle should be removed")

	r.Broadcast(1, []byte("second"))
	assert.Equal(t, 2, healthy.received())
}

func TestRegistry_BroadcastEmptyRoom(t *testing.T) {
	r := NewRegistry("test")
	// Must not panic or create a room entry
	r.Broadcast(42, []byte("nobody home"))
	assert.Equal(t, 0, r.RoomCount())
}

func TestRegistry_BroadcastJSON(t *testing.T) {
	r := NewRegistry("test")
	h := newFakeHandle("h")
	r.Join(1, h)

	err := r.BroadcastJSON(1, map[string]string{"type": "join", "user": "alice"})
	require.NoError(t, err)
	require.Equal(t, 1, h.received())
	assert.JSONEq(t, `{"type":"join","user":"alice"}`, string(h.sent[0]))

	err = r.BroadcastJSON(1, func() {})
	assert.Error(t, err, "unmarshalable value should surface an error")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry("test")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h := newFakeHandle(fmt.Sprintf("h%d", n))
			r.Join(1, h)
			r.Broadcast(1, []byte("ping"))
			r.Leave(1, h)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.RoomSize(1))
}
