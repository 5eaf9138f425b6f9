package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnglab/param-robustness/pkg/types"
)

func TestSeriesSource_NormalizesData(t *testing.T) {
	bars := hourlyBars(5, 100)
	scrambled := types.PriceSeries{bars[3], bars[0], bars[4], bars[2], bars[1], bars[2]}
	stub := &stubProvider{data: scrambled}
	source := NewSeriesSource(stub, TickerResolver())

	series, err := source.Series(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	require.Len(t, series, 5)
	require.NoError(t, NewDefaultDataFilter().ValidateTimeSequence(series))
}

func TestSeriesSource_AppliesTrailingPeriod(t *testing.T) {
	stub := &stubProvider{data: hourlyBars(10, 100)}
	source := NewSeriesSource(stub, TickerResolver())
	source.SetPeriod(2 * time.Hour)

	series, err := source.Series(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestSeriesSource_ResolverFailure(t *testing.T) {
	stub := &stubProvider{data: hourlyBars(5, 100)}
	resolver := func(ticker string) (string, error) {
		return "", fmt.Errorf("no data file found for %s", ticker)
	}
	source := NewSeriesSource(stub, resolver)

	_, err := source.Series(context.Background(), "DOGEUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOGEUSDT")
	assert.Equal(t, 0, stub.calls)
}

func TestSeriesSource_ProviderFailure(t *testing.T) {
	stub := &stubProvider{err: fmt.Errorf("connection refused")}
	source := NewSeriesSource(stub, TickerResolver())

	_, err := source.Series(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSeriesSource_InvalidData(t *testing.T) {
	bad := hourlyBars(3, 100)
	bad[1].Close = -5
	bad[1].Low = -6
	stub := &stubProvider{data: bad}
	source := NewSeriesSource(stub, TickerResolver())

	_, err := source.Series(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid series for BTCUSDT")
}

func TestSeriesSource_LoaderFunc(t *testing.T) {
	stub := &stubProvider{data: hourlyBars(4, 100)}
	source := NewSeriesSource(stub, TickerResolver())

	load := source.LoaderFunc(context.Background())
	series, err := load("ETHUSDT")
	require.NoError(t, err)
	assert.Len(t, series, 4)
}

func TestCSVResolver_WithLocatedFile(t *testing.T) {
	root := t.TempDir()
	path := fmt.Sprintf("%s/bybit/linear/BTCUSDT/60/candles.csv", root)
	writeCandleFile(t, path, "2024-01-01 00:00:00,100,105,99,102,1000")

	resolver := CSVResolver(NewDefaultFileLocator(), root, "bybit", "1h")

	resolved, err := resolver("btcusdt")
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	_, err = resolver("ETHUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data file found")
}

func TestParseTrailingPeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		ok       bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"30days", 30 * 24 * time.Hour, true},
		{"168h", 168 * time.Hour, true},
		{" 1D ", 24 * time.Hour, true},
		{"d", 0, false},
		{"0d", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			period, ok := ParseTrailingPeriod(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, period)
		})
	}
}
