package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

const (
	defaultMessageLimit = 100
	maxMessageLimit     = 500
)

type createRoomRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *store.User) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Room name is required")
		return
	}

	room, err := h.store.CreateRoom(req.Name, user.ID)
	if err != nil {
		logger.Error("Failed to create room for user %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

func (h *Handler) handleListRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, user *store.User) {
	rooms, err := h.store.RoomsByUser(user.ID)
	if err != nil {
		logger.Error("Failed to list rooms for user %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rooms == nil {
		rooms = []*store.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, _ *store.User) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room id")
		return
	}

	room, err := h.store.RoomByID(id)
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	if err != nil {
		logger.Error("Failed to fetch room %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// handleRoomMessages returns a room's history in chronological order,
// paginated with limit and offset query parameters.
func (h *Handler) handleRoomMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ *store.User) {
	roomID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid room id")
		return
	}

	if _, err := h.store.RoomByID(roomID); err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		logger.Error("Failed to fetch room %d: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	limit := queryInt(r, "limit", defaultMessageLimit)
	if limit <= 0 || limit > maxMessageLimit {
		limit = defaultMessageLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	messages, err := h.store.MessagesByRoom(roomID, limit, offset)
	if err != nil {
		logger.Error("Failed to fetch messages for room %d: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if messages == nil {
		messages = []*store.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
