package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/deeecaaa/cardmarket/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.SugaredLogger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type challengeRequest struct {
	Wallet string `json:"wallet"`
}

type challengeResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	msg, err := h.authService.Challenge(req.Wallet)
	if err != nil {
		respondError(w, h.logger, "auth.challenge", err)
		return
	}
	writeJSON(w, http.StatusOK, challengeResponse{Message: msg})
}

type loginRequest struct {
	Wallet    string `json:"wallet"`
	Signature string `json:"signature"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), req.Wallet, req.Signature)
	if err != nil {
		respondError(w, h.logger, "auth.login", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
