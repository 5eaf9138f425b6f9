package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rnglab/param-robustness/pkg/types"
)

// CSVProvider implements DataProvider for CSV candle files.
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with the default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		format: DefaultCSVFormat,
	}
}

// NewCSVProviderWithFormat creates a new CSV data provider with a custom format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical data from a CSV file. Malformed rows are logged
// and skipped; a missing file is an error so the caller can fail the ticker.
func (p *CSVProvider) LoadData(_ context.Context, source string) (types.PriceSeries, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var data types.PriceSeries

	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		bar, ok := p.parseRecord(record, lineNum)
		if !ok {
			continue
		}
		data = append(data, bar)
	}

	return data, nil
}

// parseRecord converts one CSV record to a bar, reporting false for rows that
// cannot be used.
func (p *CSVProvider) parseRecord(record []string, lineNum int) (types.OHLCV, bool) {
	format := p.format

	if len(record) < format.MinColumns {
		log.Warn().Int("line", lineNum).Int("expected", format.MinColumns).Int("got", len(record)).
			Msg("Insufficient columns, skipping row")
		return types.OHLCV{}, false
	}

	timestamp, err := time.Parse(format.DateFormat, record[format.TimestampCol])
	if err != nil {
		log.Warn().Int("line", lineNum).Str("timestamp", record[format.TimestampCol]).
			Msg("Invalid timestamp, skipping row")
		return types.OHLCV{}, false
	}

	fields := [...]struct {
		name string
		col  int
	}{
		{"open", format.OpenCol},
		{"high", format.HighCol},
		{"low", format.LowCol},
		{"close", format.CloseCol},
		{"volume", format.VolumeCol},
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(record[f.col], 64)
		if err != nil {
			log.Warn().Int("line", lineNum).Str("field", f.name).Str("value", record[f.col]).
				Msg("Invalid number, skipping row")
			return types.OHLCV{}, false
		}
		values[i] = v
	}

	bar := types.OHLCV{
		Timestamp: timestamp,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}

	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		log.Warn().Int("line", lineNum).Msg("Non-positive price, skipping row")
		return types.OHLCV{}, false
	}
	if bar.High < bar.Open || bar.High < bar.Close || bar.High < bar.Low {
		log.Warn().Int("line", lineNum).Msg("High below other prices, skipping row")
		return types.OHLCV{}, false
	}
	if bar.Low > bar.Open || bar.Low > bar.Close {
		log.Warn().Int("line", lineNum).Msg("Low above other prices, skipping row")
		return types.OHLCV{}, false
	}

	return bar, true
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data types.PriceSeries) error {
	return ValidateSeries(data)
}
