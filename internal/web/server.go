package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/hub"
	"github.com/inkognitroz/Virtual-Company/internal/llm"
	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

// MessageStore is the persistence capability the session handlers need
type MessageStore interface {
	RoomByID(id int64) (*store.Room, error)
	RoleByID(id int64) (*store.Role, error)
	CreateMessage(roomID, userID int64, roleID *int64, content, messageType string) (*store.Message, error)
}

// IdentityVerifier resolves a bearer credential to a user or rejects it
type IdentityVerifier interface {
	VerifyToken(token string) (*store.User, error)
}

// CompletionBridge generates an AI reply for a prompt and instructions.
// By contract it never returns a Go error; failures are folded into the
// Outcome.
type CompletionBridge interface {
	Generate(ctx context.Context, req llm.GenerateRequest) llm.Outcome
}

// Server hosts the WebSocket endpoints and the REST API router
type Server struct {
	addr       string
	httpServer *http.Server
	router     *httprouter.Router
	verifier   IdentityVerifier
	store      MessageStore
	bridge     CompletionBridge
	chat       *hub.Registry
	signaling  *hub.Registry
	upgrader   websocket.Upgrader
}

// NewServer creates the server with its two connection registries
func NewServer(addr string, verifier IdentityVerifier, st MessageStore, bridge CompletionBridge) *Server {
	s := &Server{
		addr:      addr,
		router:    httprouter.New(),
		verifier:  verifier,
		store:     st,
		bridge:    bridge,
		chat:      hub.NewRegistry("chat"),
		signaling: hub.NewRegistry("signaling"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients connect from a separately hosted frontend
				return true
			},
		},
	}

	s.router.GET("/ws/chat/:room_id", s.handleChatSocket)
	s.router.GET("/ws/signaling/:room_id", s.handleSignalingSocket)

	return s
}

// Router returns the underlying router so REST routes can be mounted
func (s *Server) Router() *httprouter.Router {
	return s.router
}

// ChatRegistry returns the chat connection registry
func (s *Server) ChatRegistry() *hub.Registry {
	return s.chat
}

// SignalingRegistry returns the signaling connection registry
func (s *Server) SignalingRegistry() *hub.Registry {
	return s.signaling
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Server listening on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the HTTP server down
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// closePolicyViolation rejects an upgraded socket with close code 1008.
// The connection was never joined to a registry.
func closePolicyViolation(ws *websocket.Conn, reason string) {
	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = ws.Close()
}
