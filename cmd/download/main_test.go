package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnglab/param-robustness/internal/exchange/bybit"
	datamanager "github.com/rnglab/param-robustness/pkg/data"
)

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, splitSymbols("btcusdt, ethusdt"))
	assert.Equal(t, []string{"SOLUSDT"}, splitSymbols("SOLUSDT,"))
	assert.Nil(t, splitSymbols(""))
}

func TestParseDateRange(t *testing.T) {
	start, end, err := parseDateRange("2024-01-01", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	_, _, err = parseDateRange("2024-03-01", "2024-01-01")
	assert.Error(t, err)

	_, _, err = parseDateRange("01/02/2024", "")
	assert.Error(t, err)
}

func TestParseDateRange_Defaults(t *testing.T) {
	start, end, err := parseDateRange("", "")
	require.NoError(t, err)
	assert.True(t, end.After(start))
	assert.InDelta(t, 365*24, end.Sub(start).Hours(), 25)
}

func TestWriteCandlesCSV_ReadableByProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bybit", "linear", "BTCUSDT", "60", "candles.csv")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	klines := []bybit.Kline{
		{StartTime: base, OpenPrice: 100, HighPrice: 105, LowPrice: 99, ClosePrice: 104, Volume: 1200, Turnover: 125000},
		{StartTime: base.Add(time.Hour), OpenPrice: 104, HighPrice: 108, LowPrice: 103, ClosePrice: 107, Volume: 900, Turnover: 95000},
	}
	require.NoError(t, writeCandlesCSV(klines, path))

	series, err := datamanager.NewCSVProvider().LoadData(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 100.0, series[0].Open)
	assert.Equal(t, 107.0, series[1].Close)
	assert.True(t, series[0].Timestamp.Equal(base))
}
