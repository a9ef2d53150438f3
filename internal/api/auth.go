package api

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/auth"
	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email, username and password are required")
		return
	}

	// Uniqueness checks first so the caller gets a specific message
	if _, err := h.store.UserByEmail(req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if err != store.ErrNotFound {
		logger.Error("Failed to check email uniqueness: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if _, err := h.store.UserByUsername(req.Username); err == nil {
		writeError(w, http.StatusBadRequest, "Username already taken")
		return
	} else if err != store.ErrNotFound {
		logger.Error("Failed to check username uniqueness: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.store.CreateUser(req.Email, req.Username, req.Name, hashed)
	if err != nil {
		logger.Error("Failed to create user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("Registered user %s", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin accepts credentials as JSON or as a classic form post and
// issues a bearer token.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}

	user, err := h.store.UserByUsername(req.Username)
	if err != nil {
		if err != store.ErrNotFound {
			logger.Error("Failed to look up user: %v", err)
		}
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	if !auth.CheckPassword(req.Password, user.HashedPassword) {
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := auth.CreateAccessToken(h.secret, user.Username, h.tokenTTL)
	if err != nil {
		logger.Error("Failed to issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) handleMe(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, user *store.User) {
	writeJSON(w, http.StatusOK, user)
}
