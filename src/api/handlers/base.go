package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"papertrading/src/api/controllers"
	"papertrading/src/models"
	"papertrading/src/utils"

	"github.com/go-chi/jwtauth"
)

type Handler struct {
	PaperTradingController controllers.PaperTradingControllerI
}

func NewHandler(controller controllers.PaperTradingControllerI) *Handler {
	return &Handler{PaperTradingController: controller}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// sendFile writes a rendered document. An empty filename serves it inline.
func (h *Handler) sendFile(ctx context.Context, w http.ResponseWriter, buf *bytes.Buffer, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("failed to write response body")
	}
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrInvalidQuantity, http.StatusBadRequest},
	{models.ErrInvalidPrice, http.StatusBadRequest},
	{models.ErrInsufficientFunds, http.StatusBadRequest},
	{models.ErrInsufficientQuantity, http.StatusBadRequest},
	{models.ErrHoldingNotFound, http.StatusNotFound},
	{models.ErrAccountNotFound, http.StatusNotFound},
	{models.ErrAccountExists, http.StatusConflict},
	{models.ErrQuoteUnavailable, http.StatusBadGateway},
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			h.respond(w, nil, map[string]string{"error": e.err.Error()}, e.status)
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
		return
	}
	utils.WriteError(w, err)
}

// userID reads the subject claim set by the jwtauth verifier.
func userID(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", utils.Unauthorized("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", utils.Unauthorized("token has no subject")
	}
	return sub, nil
}
