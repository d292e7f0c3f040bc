package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// respondError maps domain errors onto HTTP statuses. Anything unmapped is
// an internal error and gets logged; domain errors surface as-is.
func respondError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())

	case errors.Is(err, domain.ErrBadSignature),
		errors.Is(err, service.ErrChallengeExpired):
		writeError(w, http.StatusUnauthorized, "AUTHENTICATION", err.Error())

	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotAdmin):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, domain.ErrWrongFee),
		errors.Is(err, domain.ErrWrongPayment):
		writeError(w, http.StatusPaymentRequired, "PAYMENT", err.Error())

	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrWalletTaken),
		errors.Is(err, domain.ErrNotListed),
		errors.Is(err, domain.ErrAlreadyListed),
		errors.Is(err, domain.ErrSelfTrade),
		errors.Is(err, domain.ErrNothingToWithdraw):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())

	default:
		logger.Errorw("request failed", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
