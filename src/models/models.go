package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRow is one row of the bundled price dataset: the closing USD price of
// one Bitcoin on a given day. Rows are ordered ascending by Date.
type PriceRow struct {
	Date  int64   `json:"date"` // epoch seconds
	Price float64 `json:"price"`
}

// ChartPoint is one point of the derived holdings-value series.
type ChartPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"` // holdings value in the selected currency
	Price decimal.Decimal `json:"price"` // source BTC price in USD
}

// AllTimeHigh is the maximum value reached by the holdings series and when.
type AllTimeHigh struct {
	Value decimal.Decimal `json:"value"`
	Date  time.Time       `json:"date"`
}

// ExchangeRate is the latest EUR-per-USD conversion ratio resolved from the
// external quote API.
type ExchangeRate struct {
	EURPerUSD decimal.Decimal `json:"eurPerUsd"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// ChartResponse is the payload served to the chart page.
type ChartResponse struct {
	Holdings    decimal.Decimal `json:"holdings"`
	Currency    Currency        `json:"currency"`
	Points      []ChartPoint    `json:"points"`
	AllTimeHigh *AllTimeHigh    `json:"allTimeHigh,omitempty"`
	Rate        *ExchangeRate   `json:"rate,omitempty"`
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency accepts the two supported currencies, case-insensitively.
// An empty string maps to USD, the chart's default.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "USD":
		return CurrencyUSD, nil
	case "EUR":
		return CurrencyEUR, nil
	default:
		return "", fmt.Errorf("unsupported currency %q", s)
	}
}

// SimplePriceResponse mirrors the quote API JSON:
// { "bitcoin": { "usd": <number>, "eur": <number> } }
type SimplePriceResponse struct {
	Bitcoin struct {
		USD float64 `json:"usd"`
		EUR float64 `json:"eur"`
	} `json:"bitcoin"`
}
