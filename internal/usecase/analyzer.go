package usecase

import (
	"math"
	"time"

	"ScreenPull/internal/domain/models"
	"ScreenPull/internal/services/analysis"
)

// minHistory is the shortest series the analyzer will work with; anything
// shorter is an insufficient-data reject, not an error.
const minHistory = 50

const rsiPeriod = 14

// Analyze derives SymbolAnalytics from a daily series. Returns nil when the
// series is too short to compute the moving averages the evaluator needs.
// When backtestDate is set, analytics are computed on the series truncated at
// that date and forward returns are measured on the remainder.
func Analyze(series *models.CandleSeries, cfg *models.ScreeningConfig, backtestDate *time.Time) *models.SymbolAnalytics {
	candles := series.Candles
	var future []models.Candle
	if backtestDate != nil {
		candles, future = series.TruncateAt(*backtestDate)
	}
	if len(candles) < minHistory {
		return nil
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	a := &models.SymbolAnalytics{
		LastClose:  closes[len(closes)-1],
		LastVolume: volumes[len(volumes)-1],
	}

	a.RSI = analysis.Last(analysis.RSI(closes, rsiPeriod))
	if math.IsNaN(a.RSI) {
		a.RSI = 50 // neutral when the window has not filled yet
	}

	a.SMA50 = analysis.Last(analysis.SMA(closes, 50))
	a.EMA50 = analysis.Last(analysis.EMA(closes, 50))
	if sma200 := analysis.Last(analysis.SMA(closes, 200)); !math.IsNaN(sma200) {
		a.SMA200 = sma200
		a.EMA200 = analysis.Last(analysis.EMA(closes, 200))
		a.HasSMA200 = true
	}
	if cfg.UseEMA {
		a.SMA50 = a.EMA50
		if a.HasSMA200 {
			a.SMA200 = a.EMA200
		}
	}

	a.AvgVolume20 = analysis.Mean(volumes, 20)
	a.VolumeRatio = 1
	if a.AvgVolume20 > 0 {
		a.VolumeRatio = a.LastVolume / a.AvgVolume20
	}

	a.HighLookback, a.LowLookback = analysis.HighLow(highs, lows, cfg.DaysToLookback)
	if a.HighLookback > 0 {
		a.ConsolidationPct = (a.HighLookback - a.LowLookback) / a.HighLookback * 100
	}

	a.Pattern = analysis.DetectPattern(candles)

	if backtestDate != nil {
		a.Backtest = backtestReturns(a.LastClose, future)
	}
	return a
}

// backtestReturns measures forward percentage moves from base over standard
// trading-day horizons, plus the 52-week extremes of the forward window.
func backtestReturns(base float64, future []models.Candle) *models.BacktestSnapshot {
	if base <= 0 || len(future) == 0 {
		return nil
	}
	pct := func(days int) float64 {
		if days >= len(future) {
			days = len(future) - 1
		}
		return (future[days].Close - base) / base * 100
	}
	bs := &models.BacktestSnapshot{
		TPlus1D:  pct(0),
		TPlus1Wk: pct(4),
		TPlus1Mo: pct(21),
		TPlus6Mo: pct(125),
		TPlus1Y:  pct(251),
	}

	n := len(future)
	if n > 252 {
		n = 252
	}
	bs.High52Wk, bs.Low52Wk = future[0].High, future[0].Low
	for _, c := range future[:n] {
		if c.High > bs.High52Wk {
			bs.High52Wk = c.High
		}
		if c.Low < bs.Low52Wk {
			bs.Low52Wk = c.Low
		}
	}
	return bs
}
