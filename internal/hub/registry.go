package hub

import (
	"encoding/json"
	"sync"

	"github.com/inkognitroz/Virtual-Company/internal/logger"
)

// Handle is one live connection as the registry sees it. Send must not
// block; it returns an error once the peer can no longer accept payloads.
type Handle interface {
	ID() string
	Send(payload []byte) error
}

// Registry tracks the live connections of each room for one channel.
// Two independent instances exist at runtime, one for chat and one for
// signaling; they never cross-deliver.
type Registry struct {
	name  string
	mu    sync.RWMutex
	rooms map[int64]map[Handle]struct{}
}

// NewRegistry creates an empty registry. The name is used for logging only.
func NewRegistry(name string) *Registry {
	return &Registry{
		name:  name,
		rooms: make(map[int64]map[Handle]struct{}),
	}
}

// Join adds a handle to a room's live set, creating the set on first use.
// Joining twice is a no-op; a handle is delivered to at most once per
// broadcast.
func (r *Registry) Join(roomID int64, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[Handle]struct{})
		r.rooms[roomID] = members
	}
	members[h] = struct{}{}

	logger.Debug("%s registry: %s joined room %d (%d members)", r.name, h.ID(), roomID, len(members))
}

// Leave removes a handle from a room's live set. The room entry is
// deleted when its last member leaves, so idle rooms cost nothing.
// No-op if the handle is absent.
func (r *Registry) Leave(roomID int64, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := members[h]; !ok {
		return
	}

	delete(members, h)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}

	logger.Debug("%s registry: %s left room %d", r.name, h.ID(), roomID)
}

// Broadcast delivers payload to every handle in the room at call time.
// A failed delivery is treated as that handle's implicit disconnect: the
// handle is removed and the remaining members still receive the payload.
// Broadcasting to a room with no members is a no-op.
func (r *Registry) Broadcast(roomID int64, payload []byte) {
	r.broadcast(roomID, payload, nil)
}

// BroadcastExcept behaves like Broadcast but skips one handle, so a
// signaling peer never echoes back to itself.
func (r *Registry) BroadcastExcept(roomID int64, payload []byte, except Handle) {
	r.broadcast(roomID, payload, except)
}

func (r *Registry) broadcast(roomID int64, payload []byte, except Handle) {
	// Deliver over a private snapshot so join/leave during the fan-out
	// cannot tear the set.
	r.mu.RLock()
	members := r.rooms[roomID]
	snapshot := make([]Handle, 0, len(members))
	for h := range members {
		if h == except {
			continue
		}
		snapshot = append(snapshot, h)
	}
	r.mu.RUnlock()

	var failed []Handle
	for _, h := range snapshot {
		if err := h.Send(payload); err != nil {
			logger.Warn("%s registry: dropping %s from room %d: %v", r.name, h.ID(), roomID, err)
			failed = append(failed, h)
		}
	}

	for _, h := range failed {
		r.Leave(roomID, h)
	}
}

// BroadcastJSON marshals v once and broadcasts the bytes to the room
func (r *Registry) BroadcastJSON(roomID int64, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Broadcast(roomID, payload)
	return nil
}

// RoomSize returns the number of live handles in a room
func (r *Registry) RoomSize(roomID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// RoomCount returns the number of rooms with at least one live handle
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
