package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/publicsuffix"

	"github.com/alfonmga/hodlbitcoin/src/logger"
	"github.com/alfonmga/hodlbitcoin/src/models"
)

// RateService polls the external quote API for the EUR-per-USD ratio. Failures
// are tolerated by keeping the last known rate in place: consumers read a
// value at most one poll interval stale, and never see a fetch error.
type RateService struct {
	httpClient *http.Client
	endpoint   string
	interval   time.Duration

	mu   sync.RWMutex
	rate *models.ExchangeRate
}

// NewRateService creates the poller. It does not fetch; call Start.
func NewRateService(endpoint string, interval time.Duration, clientTimeout time.Duration) *RateService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &RateService{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: clientTimeout,
		},
		endpoint: endpoint,
		interval: interval,
	}
}

// Start launches the polling loop: one immediate fetch, then one per interval.
// The loop lives until ctx is cancelled.
func (s *RateService) Start(ctx context.Context) {
	go func() {
		if err := s.refresh(ctx); err != nil {
			logger.L.Warn("Initial exchange rate fetch failed", "error", err)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.L.Info("Exchange rate poller stopping", "reason", ctx.Err())
				return
			case <-ticker.C:
				if err := s.refresh(ctx); err != nil {
					logger.L.Warn("Exchange rate fetch failed, keeping previous rate", "error", err)
				}
			}
		}
	}()
}

// Current returns the latest resolved rate, or nil before the first
// successful fetch.
func (s *RateService) Current() *models.ExchangeRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

func (s *RateService) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("building rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hodlbitcoin/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	var payload models.SimplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decoding quote API response: %w", err)
	}
	if payload.Bitcoin.USD <= 0 || payload.Bitcoin.EUR <= 0 {
		return fmt.Errorf("quote API returned unusable quotes: usd=%v eur=%v", payload.Bitcoin.USD, payload.Bitcoin.EUR)
	}

	rate := decimal.NewFromFloat(payload.Bitcoin.EUR).Div(decimal.NewFromFloat(payload.Bitcoin.USD))

	s.mu.Lock()
	s.rate = &models.ExchangeRate{EURPerUSD: rate, FetchedAt: time.Now().UTC()}
	s.mu.Unlock()

	logger.L.Debug("Exchange rate updated", "eurPerUsd", rate.String())
	return nil
}
