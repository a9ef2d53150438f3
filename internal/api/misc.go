package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/inkognitroz/Virtual-Company/internal/llm"
)

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Virtual Company API"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) handleListModels(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string][]llm.Model{"models": llm.AvailableModels()})
}
