package services

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/alfonmga/hodlbitcoin/src/logger"
	"github.com/alfonmga/hodlbitcoin/src/models"
)

// chartServiceImpl builds chart payloads from the immutable price series. The
// series is loaded once at startup; only holdings, currency and the polled
// exchange rate vary, so computed payloads are cached keyed on that tuple.
type chartServiceImpl struct {
	rows       []models.PriceRow
	rateSource RateSource
	chartCache *cache.Cache
}

func NewChartService(rows []models.PriceRow, rateSource RateSource, chartCache *cache.Cache) ChartBuilder {
	return &chartServiceImpl{
		rows:       rows,
		rateSource: rateSource,
		chartCache: chartCache,
	}
}

func (s *chartServiceImpl) RowCount() int {
	return len(s.rows)
}

func (s *chartServiceImpl) BuildChart(holdings decimal.Decimal, currency models.Currency) models.ChartResponse {
	rate := s.rateSource.Current()

	key := cacheKey(holdings, currency, rate)
	if cached, found := s.chartCache.Get(key); found {
		logger.L.Debug("Serving chart payload from cache", "key", key)
		return cached.(models.ChartResponse)
	}

	points, ath := ComputeSeries(s.rows, holdings, currency, rate)
	resp := models.ChartResponse{
		Holdings:    holdings,
		Currency:    currency,
		Points:      points,
		AllTimeHigh: ath,
	}
	if currency == models.CurrencyEUR {
		resp.Rate = rate
	}

	s.chartCache.Set(key, resp, cache.DefaultExpiration)
	return resp
}

// cacheKey pins a payload to the full tuple of inputs it was derived from; a
// rate refresh naturally invalidates EUR entries by changing the key.
func cacheKey(holdings decimal.Decimal, currency models.Currency, rate *models.ExchangeRate) string {
	rateKey := "none"
	// USD payloads do not depend on the rate; keying them on it would only
	// churn the cache on every refresh.
	if currency == models.CurrencyEUR && rate != nil {
		rateKey = rate.EURPerUSD.String()
	}
	return fmt.Sprintf("chart|%s|%s|%s", holdings.String(), currency, rateKey)
}
