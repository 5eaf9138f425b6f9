package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/rnglab/param-robustness/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod trims data to the trailing period, measured back from the
// last bar.
func (f *DefaultDataFilter) FilterByPeriod(data types.PriceSeries, period time.Duration) types.PriceSeries {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoff := data[len(data)-1].Timestamp.Add(-period)

	startIdx := 0
	for i, bar := range data {
		if !bar.Timestamp.Before(cutoff) {
			startIdx = i
			break
		}
	}

	return data[startIdx:]
}

// FilterByDateRange filters data to the inclusive [start, end] range
func (f *DefaultDataFilter) FilterByDateRange(data types.PriceSeries, start, end time.Time) types.PriceSeries {
	if len(data) == 0 {
		return data
	}

	var filtered types.PriceSeries
	for _, bar := range data {
		if !bar.Timestamp.Before(start) && !bar.Timestamp.After(end) {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// ValidateTimeSequence ensures data is in strictly increasing chronological order
func (f *DefaultDataFilter) ValidateTimeSequence(data types.PriceSeries) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339))
		}
		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s",
				i, data[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// SortByTimestamp returns a copy of the data in ascending timestamp order
func (f *DefaultDataFilter) SortByTimestamp(data types.PriceSeries) types.PriceSeries {
	if len(data) <= 1 {
		return data
	}

	sorted := data.Clone()
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates removes duplicate timestamps, keeping the first occurrence
func (f *DefaultDataFilter) RemoveDuplicates(data types.PriceSeries) types.PriceSeries {
	if len(data) <= 1 {
		return data
	}

	filtered := make(types.PriceSeries, 0, len(data))
	seen := make(map[int64]bool, len(data))
	for _, bar := range data {
		key := bar.Timestamp.UnixMilli()
		if seen[key] {
			continue
		}
		seen[key] = true
		filtered = append(filtered, bar)
	}
	return filtered
}

// ValidateSeries checks price sanity and chronological order for a loaded
// series. Both providers delegate their ValidateData to it.
func ValidateSeries(data types.PriceSeries) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, bar := range data {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: prices must be positive", i)
		}
		if bar.High < bar.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, bar.High, bar.Low)
		}
		if bar.High < bar.Open || bar.High < bar.Close {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) must be >= open (%.4f) and close (%.4f)",
				i, bar.High, bar.Open, bar.Close)
		}
		if bar.Low > bar.Open || bar.Low > bar.Close {
			return fmt.Errorf("invalid price data at index %d: low (%.4f) must be <= open (%.4f) and close (%.4f)",
				i, bar.Low, bar.Open, bar.Close)
		}
		if i > 0 && bar.Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("invalid timestamp sequence at index %d: timestamps must be in chronological order", i)
		}
	}

	return nil
}
