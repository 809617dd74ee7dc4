package handlers

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) RefreshValuations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	summary, ran, err := h.Controller.RefreshValuations(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	if !ran {
		h.respond(w, r, map[string]string{"message": "refresh already running"}, http.StatusConflict)
		return
	}
	h.respond(w, r, summary, http.StatusOK)
}
