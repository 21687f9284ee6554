package usecase

import (
	"fmt"

	"ScreenPull/internal/domain/models"
)

// lowVolumeDryout is the ratio under which a symbol qualifies for the
// lowest-volume screen: trading at less than half its 20-day average.
const lowVolumeDryout = 0.5

// Evaluate applies the request's criteria to per-symbol analytics and builds
// a result row on acceptance. Returns nil when the symbol is screened out.
// Pure and synchronous; rejection checks short-circuit in order.
func Evaluate(symbol string, a *models.SymbolAnalytics, req *models.ScreeningRequest, cfg *models.ScreeningConfig) *models.StockResult {
	if a == nil {
		return nil
	}
	if a.LastClose < cfg.MinPrice || a.LastClose > cfg.MaxPrice {
		return nil
	}
	if !meetsCriteria(a, req, cfg) {
		return nil
	}

	trend, maSignal := classifyTrend(a)

	res := &models.StockResult{
		Stock:         symbol,
		Consolidating: fmt.Sprintf("Range = %.1f%%", a.ConsolidationPct),
		BreakingOut:   fmt.Sprintf("BO: %.2f", a.HighLookback),
		LTP:           a.LastClose,
		VolumeRatio:   a.VolumeRatio,
		MASignal:      maSignal,
		RSI:           int(a.RSI),
		Trend:         trend,
		Pattern:       a.Pattern,
	}
	if bt := a.Backtest; bt != nil {
		res.TPlus1D = fmt.Sprintf("%+.1f%%", bt.TPlus1D)
		res.TPlus1Wk = fmt.Sprintf("%+.1f%%", bt.TPlus1Wk)
		res.TPlus1Mo = fmt.Sprintf("%+.1f%%", bt.TPlus1Mo)
		res.TPlus6Mo = fmt.Sprintf("%+.1f%%", bt.TPlus6Mo)
		res.TPlus1Y = fmt.Sprintf("%+.1f%%", bt.TPlus1Y)
		res.TPlus52WkHigh = fmt.Sprintf("%.2f", bt.High52Wk)
		res.TPlus52WkLow = fmt.Sprintf("%.2f", bt.Low52Wk)
	}
	return res
}

// meetsCriteria dispatches on the criteria kind. Kinds with no numeric check
// of their own accept, never reject.
func meetsCriteria(a *models.SymbolAnalytics, req *models.ScreeningRequest, cfg *models.ScreeningConfig) bool {
	switch req.Criteria {
	case models.CriteriaRSI:
		if req.RSIMin != nil && a.RSI < float64(*req.RSIMin) {
			return false
		}
		if req.RSIMax != nil && a.RSI > float64(*req.RSIMax) {
			return false
		}
		return true

	case models.CriteriaBreakoutVolume:
		return a.VolumeRatio >= cfg.VolumeRatio

	case models.CriteriaConsolidating:
		return a.ConsolidationPct <= cfg.ConsolidationPercentage

	case models.CriteriaBreakoutConsolidation:
		// Tight base plus a close at or above the lookback high.
		return a.ConsolidationPct <= cfg.ConsolidationPercentage &&
			a.LastClose >= a.HighLookback*0.99

	case models.CriteriaLowestVolume:
		return a.VolumeRatio <= lowVolumeDryout

	case models.CriteriaChartPatterns:
		return a.Pattern != ""

	default:
		// Full screening, reversal signals, and future kinds pass through.
		return true
	}
}

// classifyTrend maps close vs. the 50/200 moving averages to trend and
// MA-signal categories.
func classifyTrend(a *models.SymbolAnalytics) (trend, maSignal string) {
	switch {
	case a.HasSMA200 && a.LastClose > a.SMA50 && a.SMA50 > a.SMA200:
		return "Strong Up", "Bullish"
	case a.LastClose > a.SMA50:
		return "Weak Up", "Neutral"
	case a.HasSMA200 && a.LastClose < a.SMA50 && a.SMA50 < a.SMA200:
		return "Strong Down", "Bearish"
	default:
		return "Sideways", "Neutral"
	}
}
