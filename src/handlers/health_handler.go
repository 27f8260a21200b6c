package handlers

import (
	"net/http"

	"github.com/alfonmga/hodlbitcoin/src/services"
	"github.com/alfonmga/hodlbitcoin/src/utils"
)

type HealthHandler struct {
	chartService services.ChartBuilder
}

func NewHealthHandler(chartService services.ChartBuilder) *HealthHandler {
	return &HealthHandler{chartService: chartService}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, map[string]interface{}{
		"status":      "ok",
		"datasetRows": h.chartService.RowCount(),
	}, http.StatusOK)
}
