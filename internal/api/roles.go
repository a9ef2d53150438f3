package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/logger"
	"github.com/inkognitroz/Virtual-Company/internal/store"
)

type createRoleRequest struct {
	Name           string  `json:"name"`
	Avatar         string  `json:"avatar"`
	Description    *string `json:"description"`
	AIInstructions *string `json:"ai_instructions"`
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *store.User) {
	var req createRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Role name is required")
		return
	}

	role, err := h.store.CreateRole(user.ID, req.Name, req.Avatar, req.Description, req.AIInstructions)
	if err != nil {
		logger.Error("Failed to create role for user %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, user *store.User) {
	roles, err := h.store.RolesByUser(user.ID)
	if err != nil {
		logger.Error("Failed to list roles for user %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if roles == nil {
		roles = []*store.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *Handler) handleGetRole(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, user *store.User) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role id")
		return
	}

	role, err := h.store.RoleByIDForUser(id, user.ID)
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "Role not found")
		return
	}
	if err != nil {
		logger.Error("Failed to fetch role %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, role)
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, _ *http.Request, ps httprouter.Params, user *store.User) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role id")
		return
	}

	err = h.store.DeleteRole(id, user.ID)
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "Role not found")
		return
	}
	if err != nil {
		logger.Error("Failed to delete role %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Role deleted"})
}
