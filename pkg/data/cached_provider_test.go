package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnglab/param-robustness/pkg/types"
)

type stubProvider struct {
	data  types.PriceSeries
	err   error
	calls int
}

func (p *stubProvider) LoadData(_ context.Context, _ string) (types.PriceSeries, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.data.Clone(), nil
}

func (p *stubProvider) ValidateData(data types.PriceSeries) error {
	return ValidateSeries(data)
}

func (p *stubProvider) GetName() string {
	return "Stub Provider"
}

func hourlyBars(count int, start float64) types.PriceSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(types.PriceSeries, count)
	for i := range series {
		price := start + float64(i)
		series[i] = types.OHLCV{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000,
		}
	}
	return series
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set("BTCUSDT", hourlyBars(3, 100))

	first, ok := cache.Get("BTCUSDT")
	require.True(t, ok)
	first[0].Close = -1

	second, ok := cache.Get("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 100.5, second[0].Close)
}

func TestMemoryCache_ClearAndSize(t *testing.T) {
	cache := NewMemoryCache()
	assert.Equal(t, 0, cache.Size())

	cache.Set("a", hourlyBars(1, 100))
	cache.Set("b", hourlyBars(1, 200))
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestCachedProvider_LoadsOnce(t *testing.T) {
	stub := &stubProvider{data: hourlyBars(5, 100)}
	provider := NewCachedProvider(stub)

	first, err := provider.LoadData(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	second, err := provider.LoadData(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 1, provider.GetCacheSize())
}

func TestCachedProvider_DoesNotCacheFailures(t *testing.T) {
	stub := &stubProvider{err: assert.AnError}
	provider := NewCachedProvider(stub)

	_, err := provider.LoadData(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Equal(t, 0, provider.GetCacheSize())

	stub.err = nil
	stub.data = hourlyBars(2, 100)
	series, err := provider.LoadData(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Equal(t, 2, stub.calls)
}

func TestCachedProvider_Name(t *testing.T) {
	provider := NewCachedProvider(&stubProvider{})
	assert.Equal(t, "Cached Stub Provider", provider.GetName())
}
