package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateService_RefreshComputesEURPerUSD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":100000,"eur":92000}}`))
	}))
	defer server.Close()

	s := NewRateService(server.URL, time.Minute, 5*time.Second)
	require.Nil(t, s.Current())

	require.NoError(t, s.refresh(context.Background()))

	rate := s.Current()
	require.NotNil(t, rate)
	assert.True(t, rate.EURPerUSD.Equal(decimal.RequireFromString("0.92")))
	assert.False(t, rate.FetchedAt.IsZero())
}

func TestRateService_FailureKeepsPreviousRate(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":100000,"eur":92000}}`))
	}))
	defer server.Close()

	s := NewRateService(server.URL, time.Minute, 5*time.Second)
	require.NoError(t, s.refresh(context.Background()))
	before := s.Current()
	require.NotNil(t, before)

	fail.Store(true)
	err := s.refresh(context.Background())
	require.Error(t, err)

	after := s.Current()
	require.NotNil(t, after)
	assert.True(t, before.EURPerUSD.Equal(after.EURPerUSD))
	assert.Equal(t, before.FetchedAt, after.FetchedAt)
}

func TestRateService_MalformedPayloadIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	s := NewRateService(server.URL, time.Minute, 5*time.Second)
	assert.Error(t, s.refresh(context.Background()))
	assert.Nil(t, s.Current())
}

func TestRateService_ZeroQuotesAreRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":0,"eur":0}}`))
	}))
	defer server.Close()

	s := NewRateService(server.URL, time.Minute, 5*time.Second)
	assert.Error(t, s.refresh(context.Background()))
	assert.Nil(t, s.Current())
}

func TestRateService_StartStopsOnContextCancel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"bitcoin":{"usd":100000,"eur":92000}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewRateService(server.URL, 10*time.Millisecond, 5*time.Second)
	s.Start(ctx)

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, calls.Load(), "poller must stop after cancellation")
}
