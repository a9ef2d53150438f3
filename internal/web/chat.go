package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/llm"
	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

// handleChatSocket owns the lifecycle of one chat connection: it
// authenticates, joins the registry, runs the frame loop and cleans up
// on disconnect.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, err := strconv.ParseInt(ps.ByName("room_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade chat socket: %v", err)
		return
	}

	user, err := s.verifier.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		closePolicyViolation(ws, "Unauthorized")
		return
	}

	if _, err := s.store.RoomByID(roomID); err != nil {
		closePolicyViolation(ws, "Room not found")
		return
	}

	conn := newConn(ws)
	go conn.writePump()

	s.chat.Join(roomID, conn)
	if err := s.chat.BroadcastJSON(roomID, newPresenceEvent(EventTypeJoin, user.Username, roomID)); err != nil {
		logger.Error("Failed to broadcast join event: %v", err)
	}

	logger.Info("User %s connected to chat room %d", user.Username, roomID)

	s.runChatSession(conn, user, roomID)

	// Transport disconnect is the expected end of a session
	s.chat.Leave(roomID, conn)
	conn.close()
	if err := s.chat.BroadcastJSON(roomID, newPresenceEvent(EventTypeLeave, user.Username, roomID)); err != nil {
		logger.Error("Failed to broadcast leave event: %v", err)
	}

	logger.Info("User %s disconnected from chat room %d", user.Username, roomID)
}

// runChatSession blocks on the socket and processes frames until the
// peer disconnects.
func (s *Server) runChatSession(conn *Conn, user *store.User, roomID int64) {
	conn.configureReader()

	for {
		payload, err := conn.readNext()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Error("Chat socket read error for %s: %v", user.Username, err)
			}
			return
		}

		var frame ChatFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			// A bad frame from one client must not take down the room
			logger.Warn("Ignoring malformed chat frame from %s: %v", user.Username, err)
			continue
		}

		s.processChatFrame(user, roomID, &frame)
	}
}

// processChatFrame persists the frame, broadcasts it, and runs the AI
// reply step when the frame names a persona with instructions. The AI
// call is sequential within the session, so a user's message always
// precedes its reply in both the store and the broadcast stream.
func (s *Server) processChatFrame(user *store.User, roomID int64, frame *ChatFrame) {
	msg, err := s.store.CreateMessage(roomID, user.ID, frame.RoleID, frame.Content, frame.MessageType)
	if err != nil {
		// Without a durable id and timestamp there is nothing correct to
		// broadcast; skip the frame and keep the session alive.
		logger.Error("Failed to persist message in room %d: %v", roomID, err)
		return
	}

	if err := s.chat.BroadcastJSON(roomID, newMessageEvent(msg, user.Username)); err != nil {
		logger.Error("Failed to broadcast message %d: %v", msg.ID, err)
	}

	if frame.RoleID == nil {
		return
	}

	// Look the persona up fresh on every frame; its instructions may
	// have changed since the session started.
	role, err := s.store.RoleByID(*frame.RoleID)
	if err != nil {
		if err != store.ErrNotFound {
			logger.Error("Failed to load role %d: %v", *frame.RoleID, err)
		}
		return
	}
	if role.AIInstructions == nil || *role.AIInstructions == "" {
		return
	}

	outcome := s.bridge.Generate(context.Background(), llm.GenerateRequest{
		Prompt:       frame.Content,
		Model:        frame.Model,
		SystemPrompt: *role.AIInstructions,
		APIKey:       frame.APIKey,
	})
	if outcome.Failed() {
		logger.Warn("Completion failed for role %s in room %d: %v", role.Name, roomID, outcome.Err)
	}

	// The room always sees a reply attempt; failures broadcast the
	// bridge's explanatory text.
	reply, err := s.store.CreateMessage(roomID, user.ID, &role.ID, outcome.Text(), store.MessageTypeAIResponse)
	if err != nil {
		logger.Error("Failed to persist AI reply in room %d: %v", roomID, err)
		return
	}

	if err := s.chat.BroadcastJSON(roomID, newMessageEvent(reply, role.Name)); err != nil {
		logger.Error("Failed to broadcast AI reply %d: %v", reply.ID, err)
	}
}
