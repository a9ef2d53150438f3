package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkognitroz/Virtual-Company/internal/auth"
	"github.com/inkognitroz/Virtual-Company/internal/llm"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

const testSecret = "test-secret"

// stubBridge returns a canned outcome and records requests
type stubBridge struct {
	mu      sync.Mutex
	reqs    []llm.GenerateRequest
	outcome llm.Outcome
}

func (b *stubBridge) Generate(_ context.Context, req llm.GenerateRequest) llm.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reqs = append(b.reqs, req)
	return b.outcome
}

func (b *stubBridge) requests() []llm.GenerateRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]llm.GenerateRequest(nil), b.reqs...)
}

type testWeb struct {
	srv    *httptest.Server
	store  *store.Store
	bridge *stubBridge
}

func newTestWeb(t *testing.T) *testWeb {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	bridge := &stubBridge{outcome: llm.Outcome{Content: "stub reply", Model: "gpt-3.5-turbo"}}
	server := NewServer("", auth.NewVerifier(testSecret, st), st, bridge)

	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	return &testWeb{srv: srv, store: st, bridge: bridge}
}

func (w *testWeb) createUser(t *testing.T, username string) (*store.User, string) {
	t.Helper()
	user, err := w.store.CreateUser(username+"@example.com", username, "Test "+username, "hashed")
	require.NoError(t, err)
	token, err := auth.CreateAccessToken(testSecret, username, time.Minute)
	require.NoError(t, err)
	return user, token
}

func (w *testWeb) createRoom(t *testing.T, userID int64) *store.Room {
	t.Helper()
	room, err := w.store.CreateRoom("test-room", userID)
	require.NoError(t, err)
	return room
}

func (w *testWeb) dial(t *testing.T, endpoint string, roomID int64, token string) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("%s/ws/%s/%d?token=%s",
		strings.Replace(w.srv.URL, "http", "ws", 1), endpoint, roomID, token)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readJSON(t *testing.T, ws *websocket.Conn, dst interface{}) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, payload, err := ws.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, dst))
}

func expectPolicyViolation(t *testing.T, ws *websocket.Conn, reason string) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := ws.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close error, got %v", err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, reason, closeErr.Text)
}

func TestChatSocket_RejectsBadToken(t *testing.T) {
	w := newTestWeb(t)
	user, _ := w.createUser(t, "alice")
	room := w.createRoom(t, user.ID)

	ws := w.dial(t, "chat", room.ID, "garbage")
	expectPolicyViolation(t, ws, "Unauthorized")
}

func TestChatSocket_RejectsUnknownRoom(t *testing.T) {
	w := newTestWeb(t)
	_, token := w.createUser(t, "alice")

	ws := w.dial(t, "chat", 9999, token)
	expectPolicyViolation(t, ws, "Room not found")
}

func TestChatSocket_JoinAndMessageFlow(t *testing.T) {
	w := newTestWeb(t)
	user, token := w.createUser(t, "alice")
	room := w.createRoom(t, user.ID)

	ws := w.dial(t, "chat", room.ID, token)

	var join PresenceEvent
	readJSON(t, ws, &join)
	assert.Equal(t, EventTypeJoin, join.Type)
	assert.Equal(t, "alice", join.User)
	assert.Equal(t, room.ID, join.RoomID)

	require.NoError(t, ws.WriteJSON(ChatFrame{Content: "hello room"}))

	var msg MessageEvent
	readJSON(t, ws, &msg)
	assert.Equal(t, EventTypeMessage, msg.Type)
	assert.Equal(t, "alice", msg.User)
	assert.Equal(t, "hello room", msg.Content)
	assert.NotZero(t, msg.ID)
	assert.Nil(t, msg.RoleID)

	// The broadcast carries the persisted record's id and timestamp
	_, err := time.Parse(time.RFC3339, msg.Timestamp)
	require.NoError(t, err)
	stored, err := w.store.MessagesByRoom(room.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, stored[0].ID, msg.ID)
}

func TestChatSocket_BroadcastReachesAllMembers(t *testing.T) {
	w := newTestWeb(t)
	alice, aliceToken := w.createUser(t, "alice")
	_, bobToken := w.createUser(t, "bob")
	room := w.createRoom(t, alice.ID)

	wsAlice := w.dial(t, "chat", room.ID, aliceToken)
	var ev PresenceEvent
	readJSON(t, wsAlice, &ev) // alice join

	wsBob := w.dial(t, "chat", room.ID, bobToken)
	readJSON(t, wsBob, &ev) // bob join, seen by bob
	readJSON(t, wsAlice, &ev)
	assert.Equal(t, "bob", ev.User)

	require.NoError(t, wsAlice.WriteJSON(ChatFrame{Content: "hi bob"}))

	var got MessageEvent
	readJSON(t, wsBob, &got)
	assert.Equal(t, "hi bob", got.Content)
	assert.Equal(t, "alice", got.User)

	readJSON(t, wsAlice, &got)
	assert.Equal(t, "hi bob", got.Content, "sender receives the broadcast too")
}

func TestChatSocket_LeaveEventOnDisconnect(t *testing.T) {
	w := newTestWeb(t)
	alice, aliceToken := w.createUser(t, "alice")
	_, bobToken := w.createUser(t, "bob")
	room := w.createRoom(t, alice.ID)

	wsAlice := w.dial(t, "chat", room.ID, aliceToken)
	var ev PresenceEvent
	readJSON(t, wsAlice, &ev)

	wsBob := w.dial(t, "chat", room.ID, bobToken)
	readJSON(t, wsBob, &ev)
	readJSON(t, wsAlice, &ev)

	require.NoError(t, wsBob.Close())

	readJSON(t, wsAlice, &ev)
	assert.Equal(t, EventTypeLeave, ev.Type)
	assert.Equal(t, "bob", ev.User)
}

func TestChatSocket_AIReply(t *testing.T) {
	w := newTestWeb(t)
	user, token := w.createUser(t, "alice")
	room := w.createRoom(t, user.ID)

	instructions := "You are a designer. Answer briefly."
	role, err := w.store.CreateRole(user.ID, "Designer", "🎨", nil, &instructions)
	require.NoError(t, err)

	ws := w.dial(t, "chat", room.ID, token)
	var join PresenceEvent
	readJSON(t, ws, &join)

	require.NoError(t, ws.WriteJSON(ChatFrame{
		Content: "design a logo",
		RoleID:  &role.ID,
		Model:   "gpt-4",
		APIKey:  "caller-key",
	}))

	// User message precedes the AI reply
	var userMsg MessageEvent
	readJSON(t, ws, &userMsg)
	assert.Equal(t, "alice", userMsg.User)
	assert.Equal(t, "design a logo", userMsg.Content)
	require.NotNil(t, userMsg.RoleID)
	assert.Equal(t, role.ID, *userMsg.RoleID)

	var reply MessageEvent
	readJSON(t, ws, &reply)
	assert.Equal(t, "Designer", reply.User, "AI reply is attributed to the persona")
	assert.Equal(t, "stub reply", reply.Content)
	assert.Equal(t, store.MessageTypeAIResponse, reply.MessageType)
	assert.Greater(t, reply.ID, userMsg.ID)

	reqs := w.bridge.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "design a logo", reqs[0].Prompt)
	assert.Equal(t, instructions, reqs[0].SystemPrompt)
	assert.Equal(t, "gpt-4", reqs[0].Model)
	assert.Equal(t, "caller-key", reqs[0].APIKey)

	// Both records are persisted, in order
	stored, err := w.store.MessagesByRoom(room.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, store.MessageTypeAIResponse, stored[1].MessageType)
}

func TestChatSocket_RoleWithoutInstructionsIsSilent(t *testing.T) {
	w := newTestWeb(t)
	user, token := w.createUser(t, "alice")
	room := w.createRoom(t, user.ID)

	role, err := w.store.CreateRole(user.ID, "Mute", "🤐", nil, nil)
	require.NoError(t, err)

	ws := w.dial(t, "chat", room.ID, token)
	var join PresenceEvent
	readJSON(t, ws, &join)

	require.NoError(t, ws.WriteJSON(ChatFrame{Content: "anyone there?", RoleID: &role.ID}))

	var msg MessageEvent
	readJSON(t, ws, &msg)
	assert.Equal(t, "anyone there?", msg.Content)

	assert.Empty(t, w.bridge.requests(), "no completion without instructions")
}

func TestChatSocket_FailedCompletionStillReplies(t *testing.T) {
	w := newTestWeb(t)
	user, token := w.createUser(t, "alice")
	room := w.createRoom(t, user.ID)

	instructions := "You are helpful."
	role, err := w.store.CreateRole(user.ID, "Helper", "🤝", nil, &instructions)
	require.NoError(t, err)

	w.bridge.outcome = llm.Outcome{Err: llm.ErrMissingAPIKey}

	ws := w.dial(t, "chat", room.ID, token)
	var join PresenceEvent
	readJSON(t, ws, &join)

	require.NoError(t, ws.WriteJSON(ChatFrame{Content: "help me", RoleID: &role.ID}))

	var userMsg, reply MessageEvent
	readJSON(t, ws, &userMsg)
	readJSON(t, ws, &reply)
	assert.Equal(t, "Helper", reply.User)
	assert.Equal(t, "Please configure an API key to use AI features.", reply.Content)
	assert.Equal(t, store.MessageTypeAIResponse, reply.MessageType)
}

func TestChatSocket_MalformedFrameIgnored(t *testing.T) {
	w := newTestWeb(t)
	user, token := w.createUser(t, "alice")
	room := w.createRoom(t, user.ID)

	ws := w.dial(t, "chat", room.ID, token)
	var join PresenceEvent
	readJSON(t, ws, &join)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, ws.WriteJSON(ChatFrame{Content: "still alive"}))

	var msg MessageEvent
	readJSON(t, ws, &msg)
	assert.Equal(t, "still alive", msg.Content)

	stored, err := w.store.MessagesByRoom(room.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "malformed frame must not be persisted")
}

func TestSignalingSocket_RejectsBadToken(t *testing.T) {
	w := newTestWeb(t)

	ws := w.dial(t, "signaling", 1, "garbage")
	expectPolicyViolation(t, ws, "Unauthorized")
}

func TestSignalingSocket_RelayWithoutEcho(t *testing.T) {
	w := newTestWeb(t)
	alice, aliceToken := w.createUser(t, "alice")
	_, bobToken := w.createUser(t, "bob")
	room := w.createRoom(t, alice.ID)

	wsAlice := w.dial(t, "signaling", room.ID, aliceToken)
	wsBob := w.dial(t, "signaling", room.ID, bobToken)

	// Give the second join a moment to register before relaying
	time.Sleep(50 * time.Millisecond)

	offer := map[string]interface{}{"type": "offer", "sdp": "v=0..."}
	require.NoError(t, wsAlice.WriteJSON(offer))

	var gotOffer map[string]interface{}
	readJSON(t, wsBob, &gotOffer)
	assert.Equal(t, "offer", gotOffer["type"])

	// Bob answers; the first frame Alice sees must be the answer, not an
	// echo of her own offer.
	answer := map[string]interface{}{"type": "answer", "sdp": "v=0..."}
	require.NoError(t, wsBob.WriteJSON(answer))

	var gotAnswer map[string]interface{}
	readJSON(t, wsAlice, &gotAnswer)
	assert.Equal(t, "answer", gotAnswer["type"])
}

func TestSignalingSocket_NoRoomCheck(t *testing.T) {
	w := newTestWeb(t)
	_, token := w.createUser(t, "alice")

	// Signaling rooms are ad-hoc; no stored room is required
	ws := w.dial(t, "signaling", 4242, token)
	require.NoError(t, ws.WriteJSON(map[string]string{"type": "offer"}))

	// The connection stays up; a ping round-trip proves it
	require.NoError(t, ws.WriteMessage(websocket.PingMessage, nil))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, ws.WriteJSON(map[string]string{"type": "candidate"}))
}
