package handlers

import (
	"errors"
	"net/http"

	"github.com/alfonmga/hodlbitcoin/src/logger"
	"github.com/alfonmga/hodlbitcoin/src/models"
	"github.com/alfonmga/hodlbitcoin/src/services"
	"github.com/alfonmga/hodlbitcoin/src/utils"
	"github.com/alfonmga/hodlbitcoin/src/validation"
)

type ChartHandler struct {
	chartService services.ChartBuilder
}

func NewChartHandler(chartService services.ChartBuilder) *ChartHandler {
	return &ChartHandler{chartService: chartService}
}

// HandleGetChartData serves the holdings-value series for
// ?amount=<holdings>&currency=<USD|EUR>. A rejected amount changes nothing
// server-side; the client keeps or resets its pending input.
func (h *ChartHandler) HandleGetChartData(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	currency, err := models.ParseCurrency(r.URL.Query().Get("currency"))
	if err != nil {
		utils.SendJSONError(w, "Unsupported currency. Use USD or EUR.", http.StatusBadRequest)
		return
	}

	amountStr := r.URL.Query().Get("amount")
	if amountStr == "" {
		amountStr = validation.DefaultHoldingsAmount.String()
	}
	amount, err := validation.ParseHoldingsAmount(amountStr)
	if err != nil {
		h.sendValidationError(w, err)
		return
	}

	resp := h.chartService.BuildChart(amount, currency)
	log.Debug("Chart payload built", "holdings", amount.String(), "currency", currency, "points", len(resp.Points))

	etag, err := utils.GenerateETag(resp)
	if err != nil {
		log.Error("Failed to generate ETag for chart payload", "error", err)
	} else {
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	utils.SendJSON(w, resp, http.StatusOK)
}

func (h *ChartHandler) sendValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validation.ErrNotANumber):
		// The client resets its pending input to the echoed default.
		utils.SendJSON(w, map[string]string{
			"error":         "Invalid input. Falling back to default value of 1 BTC.",
			"defaultAmount": validation.DefaultHoldingsAmount.String(),
		}, http.StatusBadRequest)
	case errors.Is(err, validation.ErrExceedsMaxSupply):
		utils.SendJSONError(w, "Mate, Bitcoin is scarce! There cannot be more than 21MM bitcoins.", http.StatusBadRequest)
	case errors.Is(err, validation.ErrTooPrecise):
		utils.SendJSONError(w, "One Bitcoin is divisible only to eight decimal places.", http.StatusBadRequest)
	case errors.Is(err, validation.ErrNotPositive):
		utils.SendJSONError(w, "Holdings amount must be greater than zero.", http.StatusBadRequest)
	default:
		utils.SendJSONError(w, "Invalid holdings amount.", http.StatusBadRequest)
	}
}
