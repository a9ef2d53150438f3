package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/logger"
)

// handleSignalingSocket relays WebRTC signaling frames between the peers
// of a room. Payloads are opaque: offers, answers and ICE candidates are
// forwarded verbatim to every member except the sender. Signaling has no
// presence semantics, so there is no join or leave notification, and no
// room pre-existence check.
func (s *Server) handleSignalingSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID, err := strconv.ParseInt(ps.ByName("room_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid room id", http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade signaling socket: %v", err)
		return
	}

	user, err := s.verifier.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		closePolicyViolation(ws, "Unauthorized")
		return
	}

	conn := newConn(ws)
	go conn.writePump()

	s.signaling.Join(roomID, conn)
	logger.Info("User %s connected to signaling room %d", user.Username, roomID)

	conn.configureReader()
	for {
		payload, err := conn.readNext()
		if err != nil {
			break
		}
		if !json.Valid(payload) {
			logger.Warn("Ignoring malformed signaling frame from %s", user.Username)
			continue
		}
		s.signaling.BroadcastExcept(roomID, payload, conn)
	}

	s.signaling.Leave(roomID, conn)
	conn.close()
	logger.Info("User %s disconnected from signaling room %d", user.Username, roomID)
}
