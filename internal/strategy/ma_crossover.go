package strategy

import (
	"errors"
	"fmt"

	"github.com/rnglab/param-robustness/internal/indicators"
	"github.com/rnglab/param-robustness/pkg/types"
)

// MACrossoverStrategy is a long-flat moving average crossover: hold the asset
// while the short average is above the long average, stay in cash otherwise.
type MACrossoverStrategy struct {
	shortWindow int
	longWindow  int
	shortSMA    *indicators.SMA
	longSMA     *indicators.SMA
}

// NewMACrossoverStrategy creates a crossover strategy with the given windows.
// The short window must be strictly smaller than the long window.
func NewMACrossoverStrategy(shortWindow, longWindow int) (*MACrossoverStrategy, error) {
	if shortWindow < 1 {
		return nil, fmt.Errorf("short window must be at least 1, got %d", shortWindow)
	}
	if longWindow <= shortWindow {
		return nil, fmt.Errorf("long window must exceed short window, got short=%d long=%d", shortWindow, longWindow)
	}

	shortSMA, err := indicators.NewSMA(shortWindow)
	if err != nil {
		return nil, err
	}
	longSMA, err := indicators.NewSMA(longWindow)
	if err != nil {
		return nil, err
	}

	return &MACrossoverStrategy{
		shortWindow: shortWindow,
		longWindow:  longWindow,
		shortSMA:    shortSMA,
		longSMA:     longSMA,
	}, nil
}

// ShouldExecuteTrade compares the two averages over the supplied window
func (s *MACrossoverStrategy) ShouldExecuteTrade(data []types.OHLCV) (*TradeDecision, error) {
	if len(data) == 0 {
		return nil, errors.New("no market data provided")
	}

	ts := data[len(data)-1].Timestamp
	if len(data) < s.longWindow {
		return &TradeDecision{
			Action:    ActionHold,
			Reason:    "Warming up indicators",
			Timestamp: ts,
		}, nil
	}

	shortMA, err := s.shortSMA.Calculate(data)
	if err != nil {
		return nil, err
	}
	longMA, err := s.longSMA.Calculate(data)
	if err != nil {
		return nil, err
	}

	switch {
	case shortMA > longMA:
		return &TradeDecision{
			Action:    ActionBuy,
			Reason:    "Short average above long average",
			Timestamp: ts,
		}, nil
	case shortMA < longMA:
		return &TradeDecision{
			Action:    ActionSell,
			Reason:    "Short average below long average",
			Timestamp: ts,
		}, nil
	default:
		return &TradeDecision{
			Action:    ActionHold,
			Reason:    "Averages equal",
			Timestamp: ts,
		}, nil
	}
}

func (s *MACrossoverStrategy) GetName() string {
	return fmt.Sprintf("MA Crossover (%d/%d)", s.shortWindow, s.longWindow)
}

func (s *MACrossoverStrategy) WarmupBars() int {
	return s.longWindow
}
