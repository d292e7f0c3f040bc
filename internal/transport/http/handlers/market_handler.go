package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/deeecaaa/cardmarket/internal/domain"
	"github.com/deeecaaa/cardmarket/internal/service"
	"github.com/deeecaaa/cardmarket/internal/transport/http/middleware"
	"github.com/deeecaaa/cardmarket/pkg/validator"
)

type MarketHandler struct {
	market *service.MarketService
	logger *zap.SugaredLogger
}

func NewMarketHandler(market *service.MarketService, logger *zap.SugaredLogger) *MarketHandler {
	return &MarketHandler{market: market, logger: logger}
}

func (h *MarketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateCardInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateCreateCard(input.Name, input.Price); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	card, err := h.market.CreateCard(r.Context(), middleware.GetWallet(r.Context()), input)
	if err != nil {
		respondError(w, h.logger, "market.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}

	card, err := h.market.GetCard(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, "market.get", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *MarketHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.market.TotalCards(r.Context())
	if err != nil {
		respondError(w, h.logger, "market.total", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

type priceRequest struct {
	Price int64 `json:"price"`
}

func (h *MarketHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	card, err := h.market.UpdatePrice(r.Context(), id, middleware.GetWallet(r.Context()), req.Price)
	if err != nil {
		respondError(w, h.logger, "market.update_price", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	card, err := h.market.ListCard(r.Context(), id, middleware.GetWallet(r.Context()), req.Price)
	if err != nil {
		respondError(w, h.logger, "market.list", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type delistRequest struct {
	FeePaid int64 `json:"fee_paid"`
}

func (h *MarketHandler) Delist(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}
	var req delistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	card, err := h.market.DelistCard(r.Context(), id, middleware.GetWallet(r.Context()), req.FeePaid)
	if err != nil {
		respondError(w, h.logger, "market.delist", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type buyRequest struct {
	Payment int64 `json:"payment"`
}

func (h *MarketHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, ok := cardID(w, r)
	if !ok {
		return
	}
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	card, err := h.market.Buy(r.Context(), id, middleware.GetWallet(r.Context()), req.Payment)
	if err != nil {
		respondError(w, h.logger, "market.buy", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *MarketHandler) Fees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.market.Fees(r.Context(), middleware.GetWallet(r.Context()))
	if err != nil {
		respondError(w, h.logger, "market.fees", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accumulated_fees": fees,
		"admin_wallet":     h.market.AdminWallet(),
	})
}

func (h *MarketHandler) WithdrawFees(w http.ResponseWriter, r *http.Request) {
	amount, err := h.market.WithdrawFees(r.Context(), middleware.GetWallet(r.Context()))
	if err != nil {
		respondError(w, h.logger, "market.withdraw_fees", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"withdrawn": amount})
}

func (h *MarketHandler) Proceeds(w http.ResponseWriter, r *http.Request) {
	balance, err := h.market.Proceeds(r.Context(), middleware.GetWallet(r.Context()))
	if err != nil {
		respondError(w, h.logger, "market.proceeds", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *MarketHandler) WithdrawProceeds(w http.ResponseWriter, r *http.Request) {
	amount, err := h.market.WithdrawProceeds(r.Context(), middleware.GetWallet(r.Context()))
	if err != nil {
		respondError(w, h.logger, "market.withdraw_proceeds", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"withdrawn": amount})
}

// cardID parses the {id} path segment; ids are 1-based, so anything below 1
// is not found rather than invalid.
func cardID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", domain.ErrCardNotFound.Error())
		return 0, false
	}
	return id, true
}
