package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/deeecaaa/cardmarket/internal/service"
	"github.com/deeecaaa/cardmarket/internal/transport/http/middleware"
	"github.com/deeecaaa/cardmarket/pkg/validator"
)

type RegistryHandler struct {
	registry *service.RegistryService
	logger   *zap.SugaredLogger
}

func NewRegistryHandler(registry *service.RegistryService, logger *zap.SugaredLogger) *RegistryHandler {
	return &RegistryHandler{registry: registry, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Wallet   string `json:"wallet"`
}

func (h *RegistryHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateRegister(req.Username, req.Wallet); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.registry.Register(r.Context(), req.Username, req.Wallet)
	if err != nil {
		respondError(w, h.logger, "registry.register", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *RegistryHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.registry.GetUser(r.Context(), r.PathValue("wallet"))
	if err != nil {
		respondError(w, h.logger, "registry.get_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UsernameStatus is the availability probe the registration form polls.
func (h *RegistryHandler) UsernameStatus(w http.ResponseWriter, r *http.Request) {
	taken, err := h.registry.IsUsernameTaken(r.Context(), r.PathValue("name"))
	if err != nil {
		respondError(w, h.logger, "registry.username_status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"taken": taken})
}

type addWalletRequest struct {
	NewWallet string `json:"new_wallet"`
	Signature string `json:"signature"`
}

func (h *RegistryHandler) AddWallet(w http.ResponseWriter, r *http.Request) {
	var req addWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateAddWallet(req.NewWallet, req.Signature); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	caller := middleware.GetWallet(r.Context())
	user, err := h.registry.AddWallet(r.Context(), caller, req.NewWallet, req.Signature)
	if err != nil {
		respondError(w, h.logger, "registry.add_wallet", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}
