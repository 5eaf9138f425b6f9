package indicators

import (
	"fmt"

	"github.com/rnglab/param-robustness/pkg/types"
)

// SMA represents the Simple Moving Average technical indicator
type SMA struct {
	period    int
	lastValue float64
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) (*SMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("sma period must be at least 1, got %d", period)
	}
	return &SMA{period: period}, nil
}

// Calculate calculates the SMA value over the last period closes
func (s *SMA) Calculate(data []types.OHLCV) (float64, error) {
	if len(data) < s.period {
		return 0, fmt.Errorf("insufficient data for sma: need %d bars, got %d", s.period, len(data))
	}

	sum := 0.0
	for i := len(data) - s.period; i < len(data); i++ {
		sum += data[i].Close
	}

	s.lastValue = sum / float64(s.period)
	return s.lastValue, nil
}

// GetLastValue returns the most recently calculated value
func (s *SMA) GetLastValue() float64 {
	return s.lastValue
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
