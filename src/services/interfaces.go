package services

import (
	"github.com/shopspring/decimal"

	"github.com/alfonmga/hodlbitcoin/src/models"
)

// RateSource supplies the latest resolved EUR/USD exchange rate, or nil when
// no fetch has succeeded yet.
type RateSource interface {
	Current() *models.ExchangeRate
}

// ChartBuilder produces the holdings-value chart payload for a validated
// holdings amount and currency.
type ChartBuilder interface {
	BuildChart(holdings decimal.Decimal, currency models.Currency) models.ChartResponse
	RowCount() int
}
