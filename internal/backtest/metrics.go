package backtest

import (
	"math"
)

// CalculateSharpeRatio calculates the Sharpe ratio over per-trade returns
func (r *Results) CalculateSharpeRatio() float64 {
	if len(r.Trades) == 0 {
		return 0
	}

	returns := make([]float64, 0, len(r.Trades))
	for _, trade := range r.Trades {
		if trade.EntryPrice > 0 && trade.ExitPrice > 0 {
			returns = append(returns, (trade.ExitPrice-trade.EntryPrice)/trade.EntryPrice)
		}
	}
	if len(returns) == 0 {
		return 0
	}

	avgReturn := 0.0
	for _, ret := range returns {
		avgReturn += ret
	}
	avgReturn /= float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		variance += math.Pow(ret-avgReturn, 2)
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev < 1e-10 {
		return 0
	}

	// Risk-free rate assumed zero
	return avgReturn / stdDev
}

// CalculateProfitFactor calculates gross profit over gross loss
func (r *Results) CalculateProfitFactor() float64 {
	if len(r.Trades) == 0 {
		return 0
	}

	totalProfit := 0.0
	totalLoss := 0.0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			totalProfit += trade.PnL
		} else {
			totalLoss += math.Abs(trade.PnL)
		}
	}

	if totalLoss == 0 {
		if totalProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}

	return totalProfit / totalLoss
}

// CalculateWinRate calculates the win rate percentage
func (r *Results) CalculateWinRate() float64 {
	if len(r.Trades) == 0 {
		return 0
	}

	wins := 0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r.Trades)) * 100
}

// UpdateMetrics updates all calculated metrics
func (r *Results) UpdateMetrics() {
	r.SharpeRatio = r.CalculateSharpeRatio()
	r.ProfitFactor = r.CalculateProfitFactor()

	wins := 0
	for _, trade := range r.Trades {
		if trade.PnL > 0 {
			wins++
		}
	}
	r.TotalTrades = len(r.Trades)
	r.WinningTrades = wins
	r.LosingTrades = r.TotalTrades - wins
}
