package data

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rnglab/param-robustness/internal/exchange/bybit"
	"github.com/rnglab/param-robustness/pkg/types"
)

// Circuit breaker settings for exchange fetches
const (
	breakerMaxFailures  = 5
	breakerResetTimeout = 30 * time.Second
)

// BybitProvider implements DataProvider on top of the Bybit kline API. The
// source string is the ticker symbol. Fetches from concurrent workers share
// one circuit breaker so a dead API stops the whole run quickly.
type BybitProvider struct {
	client   *bybit.Client
	category string
	interval bybit.KlineInterval
	limit    int
	breaker  *bybit.CircuitBreaker
}

// NewBybitProvider creates a provider fetching up to limit bars of the given
// interval ("5m", "1h", "1d", or a raw API code).
func NewBybitProvider(client *bybit.Client, category, interval string, limit int) (*BybitProvider, error) {
	klineInterval, err := bybit.IntervalFromString(interval)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got: %d", limit)
	}

	return &BybitProvider{
		client:   client,
		category: category,
		interval: klineInterval,
		limit:    limit,
		breaker:  bybit.NewCircuitBreaker(breakerMaxFailures, breakerResetTimeout),
	}, nil
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit Provider"
}

// LoadData fetches kline history for the symbol, oldest bar first.
func (p *BybitProvider) LoadData(ctx context.Context, source string) (types.PriceSeries, error) {
	var klines []bybit.Kline

	err := p.breaker.Call(func() error {
		return p.client.Retry(ctx, func() error {
			var fetchErr error
			klines, fetchErr = p.client.GetKlines(ctx, bybit.KlineParams{
				Category: p.category,
				Symbol:   source,
				Interval: p.interval,
				Limit:    p.limit,
			})
			return fetchErr
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines for %s: %w", source, err)
	}

	series := make(types.PriceSeries, 0, len(klines))
	for _, k := range klines {
		series = append(series, types.OHLCV{
			Timestamp: k.StartTime,
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
		})
	}

	// Bybit returns klines newest first.
	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	return series, nil
}

// ValidateData validates the integrity of fetched data
func (p *BybitProvider) ValidateData(data types.PriceSeries) error {
	return ValidateSeries(data)
}
