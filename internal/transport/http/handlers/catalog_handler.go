package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/service"
	"github.com/deeecaaa/cardmarket/internal/transport/http/middleware"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *zap.SugaredLogger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *zap.SugaredLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// Browse returns listed cards the caller does not own, across every wallet
// linked to the caller's account. Anonymous callers get the full catalog.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetWallet(r.Context())

	cards := []domain.Card{}
	for card, err := range h.catalog.Listed(r.Context(), viewer) {
		if err != nil {
			respondError(w, h.logger, "catalog.browse", err)
			return
		}
		cards = append(cards, card)
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

// Owned returns every card, listed or not, owned by the caller's wallets.
func (h *CatalogHandler) Owned(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.OwnedBy(r.Context(), middleware.GetWallet(r.Context()))
	if err != nil {
		respondError(w, h.logger, "catalog.owned", err)
		return
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}
