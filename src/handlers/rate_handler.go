package handlers

import (
	"net/http"

	"github.com/alfonmga/hodlbitcoin/src/models"
	"github.com/alfonmga/hodlbitcoin/src/services"
	"github.com/alfonmga/hodlbitcoin/src/utils"
)

type RateHandler struct {
	rateSource services.RateSource
}

func NewRateHandler(rateSource services.RateSource) *RateHandler {
	return &RateHandler{rateSource: rateSource}
}

type rateResponse struct {
	Known bool                 `json:"known"`
	Rate  *models.ExchangeRate `json:"rate,omitempty"`
}

// HandleGetExchangeRate reports the latest EUR/USD rate. Before the first
// successful poll the rate is simply unknown, not an error.
func (h *RateHandler) HandleGetExchangeRate(w http.ResponseWriter, r *http.Request) {
	rate := h.rateSource.Current()
	utils.SendJSON(w, rateResponse{Known: rate != nil, Rate: rate}, http.StatusOK)
}
