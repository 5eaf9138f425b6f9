package data

import (
	"context"
	"time"

	"github.com/rnglab/param-robustness/pkg/types"
)

// DataProvider loads historical price data from a source. The meaning of the
// source string depends on the provider: a file path for CSV, a ticker symbol
// for exchange providers.
type DataProvider interface {
	// LoadData loads historical data from the specified source
	LoadData(ctx context.Context, source string) (types.PriceSeries, error)

	// ValidateData validates the integrity of the loaded data
	ValidateData(data types.PriceSeries) error

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache caches loaded series by source
type DataCache interface {
	// Get retrieves data from cache if available
	Get(key string) (types.PriceSeries, bool)

	// Set stores data in cache
	Set(key string, data types.PriceSeries)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// DataFilter filters and normalizes series
type DataFilter interface {
	// FilterByPeriod trims data to the trailing period
	FilterByPeriod(data types.PriceSeries, period time.Duration) types.PriceSeries

	// FilterByDateRange filters data to a specific date range
	FilterByDateRange(data types.PriceSeries, start, end time.Time) types.PriceSeries

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data types.PriceSeries) error
}

// FileLocator finds data files on disk
type FileLocator interface {
	// FindDataFile attempts to locate the candle file for an exchange and symbol
	FindDataFile(dataRoot, exchange, symbol, interval string) string

	// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to minute numbers
	ConvertIntervalToMinutes(interval string) string
}

// CSVColumnMapping defines the column positions for different CSV formats
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// DefaultCSVFormat matches the candle files produced by the Bybit downloader:
// timestamp, open, high, low, close, volume.
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}
