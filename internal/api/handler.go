package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

// Store is the persistence surface the REST handlers use
type Store interface {
	CreateUser(email, username, name, hashedPassword string) (*store.User, error)
	UserByUsername(username string) (*store.User, error)
	UserByEmail(email string) (*store.User, error)

	CreateRole(userID int64, name, avatar string, description, aiInstructions *string) (*store.Role, error)
	RoleByIDForUser(id, userID int64) (*store.Role, error)
	RolesByUser(userID int64) ([]*store.Role, error)
	DeleteRole(id, userID int64) error

	CreateRoom(name string, createdBy int64) (*store.Room, error)
	RoomByID(id int64) (*store.Room, error)
	RoomsByUser(userID int64) ([]*store.Room, error)
	MessagesByRoom(roomID int64, limit, offset int) ([]*store.Message, error)
}

// TokenVerifier resolves bearer tokens to users
type TokenVerifier interface {
	VerifyToken(token string) (*store.User, error)
}

// Handler serves the REST API
type Handler struct {
	store    Store
	verifier TokenVerifier
	secret   string
	tokenTTL time.Duration
}

// NewHandler creates the REST handler
func NewHandler(st Store, verifier TokenVerifier, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		store:    st,
		verifier: verifier,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Register mounts all REST routes on the router
func (h *Handler) Register(router *httprouter.Router) {
	router.GET("/", h.handleRoot)
	router.GET("/health", h.handleHealth)

	router.POST("/api/auth/register", h.handleRegister)
	router.POST("/api/auth/login", h.handleLogin)
	router.GET("/api/auth/me", h.requireUser(h.handleMe))

	router.POST("/api/roles", h.requireUser(h.handleCreateRole))
	router.GET("/api/roles", h.requireUser(h.handleListRoles))
	router.GET("/api/roles/:id", h.requireUser(h.handleGetRole))
	router.DELETE("/api/roles/:id", h.requireUser(h.handleDeleteRole))

	router.POST("/api/rooms", h.requireUser(h.handleCreateRoom))
	router.GET("/api/rooms", h.requireUser(h.handleListRooms))
	router.GET("/api/rooms/:id", h.requireUser(h.handleGetRoom))
	router.GET("/api/rooms/:id/messages", h.requireUser(h.handleRoomMessages))

	router.GET("/api/llm/models", h.handleListModels)
}

// authedHandler is a route handler that additionally receives the
// authenticated caller.
type authedHandler func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *store.User)

// requireUser wraps a handler with bearer-token authentication
func (h *Handler) requireUser(next authedHandler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := h.verifier.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next(w, r, ps, user)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

// writeError emits the standard {"detail": ...} error envelope
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
