package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rnglab/param-robustness/internal/strategy"
	"github.com/rnglab/param-robustness/pkg/types"
)

// Engine replays a strategy over a price series with a long-flat position
// model: a buy signal invests the full cash balance, a sell signal liquidates
// the full position. Commission is charged on both sides.
type Engine struct {
	initialBalance float64
	commission     float64
}

type Results struct {
	StartBalance   float64
	EndBalance     float64
	GrowthMultiple float64
	TotalReturn    float64
	MaxDrawdown    float64
	SharpeRatio    float64
	ProfitFactor   float64
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	Trades         []Trade
}

type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	PnL        float64
	Commission float64
}

func NewEngine(initialBalance, commission float64) (*Engine, error) {
	if initialBalance <= 0 {
		return nil, fmt.Errorf("initial balance must be positive, got %v", initialBalance)
	}
	if commission < 0 || commission >= 1 {
		return nil, fmt.Errorf("commission must be in [0, 1), got %v", commission)
	}
	return &Engine{
		initialBalance: initialBalance,
		commission:     commission,
	}, nil
}

// Run walks the series bar by bar, feeding the strategy a sliding window and
// applying its decisions. The context is checked every bar so a deadline
// aborts a long replay promptly.
func (e *Engine) Run(ctx context.Context, data types.PriceSeries, strat strategy.Strategy) (*Results, error) {
	results := &Results{
		StartBalance: e.initialBalance,
		Trades:       make([]Trade, 0),
	}

	if len(data) == 0 {
		results.EndBalance = e.initialBalance
		results.GrowthMultiple = 1.0
		return results, nil
	}

	balance := e.initialBalance
	position := 0.0
	maxValue := balance

	windowSize := strat.WarmupBars()
	if windowSize < 1 {
		windowSize = 1
	}

	var open *Trade

	for i := windowSize; i < len(data); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		window := data[i-windowSize : i+1]
		currentPrice := data[i].Close

		decision, err := strat.ShouldExecuteTrade(window)
		if err != nil {
			return nil, fmt.Errorf("strategy decision at bar %d: %w", i, err)
		}

		switch {
		case decision.Action == strategy.ActionBuy && position == 0 && balance > 0 && currentPrice > 0:
			commission := balance * e.commission
			netAmount := balance - commission
			quantity := netAmount / currentPrice

			position = quantity
			balance = 0

			open = &Trade{
				EntryTime:  data[i].Timestamp,
				EntryPrice: currentPrice,
				Quantity:   quantity,
				Commission: commission,
			}

		case decision.Action == strategy.ActionSell && position > 0:
			proceeds := position * currentPrice
			commission := proceeds * e.commission
			balance += proceeds - commission

			if open != nil {
				open.ExitTime = data[i].Timestamp
				open.ExitPrice = currentPrice
				open.Commission += commission
				open.PnL = (currentPrice-open.EntryPrice)*open.Quantity - open.Commission
				results.Trades = append(results.Trades, *open)
				open = nil
			}
			position = 0
		}

		currentValue := balance + position*currentPrice
		if currentValue > maxValue {
			maxValue = currentValue
		}
		drawdown := (maxValue - currentValue) / maxValue
		if drawdown > results.MaxDrawdown {
			results.MaxDrawdown = drawdown
		}
	}

	finalPrice := data[len(data)-1].Close
	finalValue := balance + position*finalPrice

	// An open position is marked to the final close so its PnL is meaningful
	if open != nil {
		open.ExitTime = data[len(data)-1].Timestamp
		open.ExitPrice = finalPrice
		open.PnL = (finalPrice-open.EntryPrice)*open.Quantity - open.Commission
		results.Trades = append(results.Trades, *open)
	}

	results.EndBalance = finalValue
	results.GrowthMultiple = finalValue / e.initialBalance
	results.TotalReturn = (finalValue - e.initialBalance) / e.initialBalance
	results.UpdateMetrics()

	return results, nil
}

func (r *Results) PrintSummary() {
	fmt.Printf("=== Backtest Results ===\n")
	fmt.Printf("Initial Balance: $%.2f\n", r.StartBalance)
	fmt.Printf("Final Balance: $%.2f\n", r.EndBalance)
	fmt.Printf("Total Return: %.2f%%\n", r.TotalReturn*100)
	fmt.Printf("Max Drawdown: %.2f%%\n", r.MaxDrawdown*100)
	fmt.Printf("Total Trades: %d\n", r.TotalTrades)
	fmt.Printf("Profit Factor: %.2f\n", r.ProfitFactor)
}
