package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alfonmga/hodlbitcoin/src/models"
)

// ComputeSeries derives the holdings-value series and its all-time high from
// the raw price rows. Pure function: identical inputs always yield identical
// outputs, and any input change means a full recomputation by the caller.
//
// Per row: value = holdings * price, converted to EUR only when the selected
// currency is EUR and a rate is known; with no known rate the USD value is
// served unconverted. Input order (chronological in the dataset) is preserved.
func ComputeSeries(rows []models.PriceRow, holdings decimal.Decimal, currency models.Currency, rate *models.ExchangeRate) ([]models.ChartPoint, *models.AllTimeHigh) {
	if len(rows) == 0 {
		return nil, nil
	}

	convert := currency == models.CurrencyEUR && rate != nil

	points := make([]models.ChartPoint, 0, len(rows))
	var ath *models.AllTimeHigh
	for _, row := range rows {
		price := decimal.NewFromFloat(row.Price)
		value := holdings.Mul(price)
		if convert {
			value = value.Mul(rate.EURPerUSD)
		}
		date := time.Unix(row.Date, 0).UTC()
		points = append(points, models.ChartPoint{
			Date:  date,
			Value: value,
			Price: price,
		})
		// Strict greater-than: the first occurrence of a maximum wins.
		if ath == nil || value.GreaterThan(ath.Value) {
			ath = &models.AllTimeHigh{Value: value, Date: date}
		}
	}
	return points, ath
}
