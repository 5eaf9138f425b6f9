package data

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rnglab/param-robustness/internal/robustness"
	"github.com/rnglab/param-robustness/pkg/types"
)

// SourceResolver maps a ticker to the provider-specific source string.
type SourceResolver func(ticker string) (string, error)

// CSVResolver locates candle files under the standard layout.
func CSVResolver(locator FileLocator, dataRoot, exchange, interval string) SourceResolver {
	return func(ticker string) (string, error) {
		path := locator.FindDataFile(dataRoot, exchange, ticker, interval)
		if path == "" {
			return "", fmt.Errorf("no data file found for %s under %s", ticker, dataRoot)
		}
		return path, nil
	}
}

// TickerResolver passes the ticker through unchanged, for providers that
// fetch by symbol.
func TickerResolver() SourceResolver {
	return func(ticker string) (string, error) {
		return ticker, nil
	}
}

// SeriesSource resolves tickers to normalized, validated price history. It is
// the loader the portfolio analysis consumes.
type SeriesSource struct {
	provider DataProvider
	resolver SourceResolver
	filter   *DefaultDataFilter
	period   time.Duration
}

// NewSeriesSource creates a series source from a provider and resolver
func NewSeriesSource(provider DataProvider, resolver SourceResolver) *SeriesSource {
	return &SeriesSource{
		provider: provider,
		resolver: resolver,
		filter:   NewDefaultDataFilter(),
	}
}

// SetPeriod restricts loaded series to the trailing period. Zero disables the
// restriction.
func (s *SeriesSource) SetPeriod(period time.Duration) {
	s.period = period
}

// Series loads, normalizes, and validates the history for one ticker.
func (s *SeriesSource) Series(ctx context.Context, ticker string) (types.PriceSeries, error) {
	source, err := s.resolver(ticker)
	if err != nil {
		return nil, err
	}

	series, err := s.provider.LoadData(ctx, source)
	if err != nil {
		return nil, err
	}

	series = s.filter.SortByTimestamp(series)
	series = s.filter.RemoveDuplicates(series)
	if s.period > 0 {
		series = s.filter.FilterByPeriod(series, s.period)
	}

	if err := s.provider.ValidateData(series); err != nil {
		return nil, fmt.Errorf("invalid series for %s: %w", ticker, err)
	}

	return series, nil
}

// LoaderFunc adapts the source to the loader shape the portfolio manager
// takes, binding the run context.
func (s *SeriesSource) LoaderFunc(ctx context.Context) robustness.SeriesFunc {
	return func(ticker string) (types.PriceSeries, error) {
		return s.Series(ctx, ticker)
	}
}

// ParseTrailingPeriod parses period strings like "7d", "30d", or raw
// durations like "168h".
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		nStr := strings.TrimSuffix(s, "d")
		if nStr == "" {
			return 0, false
		}
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
