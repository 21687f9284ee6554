package usecase

import (
	"testing"
	"time"

	"ScreenPull/internal/domain/models"
)

func intPtr(v int) *int { return &v }

func baseAnalytics() *models.SymbolAnalytics {
	return &models.SymbolAnalytics{
		LastClose:        500,
		RSI:              55,
		SMA50:            480,
		SMA200:           450,
		HasSMA200:        true,
		VolumeRatio:      1.2,
		HighLookback:     520,
		LowLookback:      480,
		ConsolidationPct: 7.7,
	}
}

func defaultCfg() *models.ScreeningConfig {
	cfg := models.DefaultScreeningConfig()
	return &cfg
}

func TestEvaluateNilAnalytics(t *testing.T) {
	req := &models.ScreeningRequest{Criteria: models.CriteriaFullScreening}
	if res := Evaluate("AAA", nil, req, defaultCfg()); res != nil {
		t.Fatalf("expected nil for nil analytics, got %+v", res)
	}
}

func TestEvaluatePriceFilter(t *testing.T) {
	req := &models.ScreeningRequest{Criteria: models.CriteriaFullScreening}
	cfg := defaultCfg()

	a := baseAnalytics()
	a.LastClose = 5 // below min_price 30
	if res := Evaluate("PENNY", a, req, cfg); res != nil {
		t.Fatalf("expected price reject, got %+v", res)
	}

	a = baseAnalytics()
	a.LastClose = 50000 // above max_price 10000
	if res := Evaluate("RICH", a, req, cfg); res != nil {
		t.Fatalf("expected price reject, got %+v", res)
	}
}

func TestEvaluateRSICriteria(t *testing.T) {
	cfg := defaultCfg()
	req := &models.ScreeningRequest{
		Criteria: models.CriteriaRSI,
		RSIMin:   intPtr(40),
		RSIMax:   intPtr(60),
	}

	a := baseAnalytics()
	a.RSI = 55
	res := Evaluate("INBAND", a, req, cfg)
	if res == nil {
		t.Fatalf("expected match for RSI 55 in [40,60]")
	}
	if res.RSI != 55 {
		t.Fatalf("result rsi: got %d want 55", res.RSI)
	}

	a.RSI = 75
	if res := Evaluate("HOT", a, req, cfg); res != nil {
		t.Fatalf("expected reject for RSI 75 above max")
	}

	a.RSI = 20
	if res := Evaluate("COLD", a, req, cfg); res != nil {
		t.Fatalf("expected reject for RSI 20 below min")
	}
}

func TestEvaluateBreakoutVolume(t *testing.T) {
	cfg := defaultCfg() // volume_ratio 2.0
	req := &models.ScreeningRequest{Criteria: models.CriteriaBreakoutVolume}

	a := baseAnalytics()
	a.VolumeRatio = 2.5
	if res := Evaluate("BO", a, req, cfg); res == nil {
		t.Fatalf("expected match for volume ratio 2.5")
	}

	a.VolumeRatio = 1.5
	if res := Evaluate("QUIET", a, req, cfg); res != nil {
		t.Fatalf("expected reject for volume ratio 1.5")
	}
}

func TestEvaluateConsolidating(t *testing.T) {
	cfg := defaultCfg() // consolidation 10%
	req := &models.ScreeningRequest{Criteria: models.CriteriaConsolidating}

	a := baseAnalytics()
	a.ConsolidationPct = 6
	res := Evaluate("TIGHT", a, req, cfg)
	if res == nil {
		t.Fatalf("expected match for 6%% range")
	}
	if res.Consolidating != "Range = 6.0%" {
		t.Fatalf("consolidating text: got %q", res.Consolidating)
	}

	a.ConsolidationPct = 25
	if res := Evaluate("WIDE", a, req, cfg); res != nil {
		t.Fatalf("expected reject for 25%% range")
	}
}

func TestEvaluateBreakoutConsolidation(t *testing.T) {
	cfg := defaultCfg()
	req := &models.ScreeningRequest{Criteria: models.CriteriaBreakoutConsolidation}

	a := baseAnalytics()
	a.ConsolidationPct = 5
	a.HighLookback = 500
	a.LastClose = 499 // within 1% of the base high
	if res := Evaluate("BOC", a, req, cfg); res == nil {
		t.Fatalf("expected match for tight base near high")
	}

	a.LastClose = 470
	if res := Evaluate("BASE", a, req, cfg); res != nil {
		t.Fatalf("expected reject when close is far from the high")
	}
}

func TestEvaluateChartPatterns(t *testing.T) {
	cfg := defaultCfg()
	req := &models.ScreeningRequest{Criteria: models.CriteriaChartPatterns}

	a := baseAnalytics()
	a.Pattern = "NR4"
	res := Evaluate("PAT", a, req, cfg)
	if res == nil || res.Pattern != "NR4" {
		t.Fatalf("expected pattern match, got %+v", res)
	}

	a.Pattern = ""
	if res := Evaluate("FLAT", a, req, cfg); res != nil {
		t.Fatalf("expected reject without pattern")
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		name       string
		a          models.SymbolAnalytics
		wantTrend  string
		wantSignal string
	}{
		{"strong up", models.SymbolAnalytics{LastClose: 100, SMA50: 90, SMA200: 80, HasSMA200: true}, "Strong Up", "Bullish"},
		{"weak up no sma200", models.SymbolAnalytics{LastClose: 100, SMA50: 90}, "Weak Up", "Neutral"},
		{"strong down", models.SymbolAnalytics{LastClose: 70, SMA50: 80, SMA200: 90, HasSMA200: true}, "Strong Down", "Bearish"},
		{"sideways", models.SymbolAnalytics{LastClose: 85, SMA50: 90, SMA200: 80, HasSMA200: true}, "Sideways", "Neutral"},
	}
	for _, tc := range cases {
		trend, signal := classifyTrend(&tc.a)
		if trend != tc.wantTrend || signal != tc.wantSignal {
			t.Fatalf("%s: got (%q,%q) want (%q,%q)", tc.name, trend, signal, tc.wantTrend, tc.wantSignal)
		}
	}
}

func TestEvaluateBacktestFields(t *testing.T) {
	cfg := defaultCfg()
	req := &models.ScreeningRequest{Criteria: models.CriteriaFullScreening}

	a := baseAnalytics()
	a.Backtest = &models.BacktestSnapshot{
		TPlus1D:  1.5,
		TPlus1Wk: -2.25,
		High52Wk: 540,
		Low52Wk:  470,
	}
	res := Evaluate("BT", a, req, cfg)
	if res == nil {
		t.Fatalf("expected match")
	}
	if res.TPlus1D != "+1.5%" {
		t.Fatalf("t+1d: got %q", res.TPlus1D)
	}
	if res.TPlus1Wk != "-2.2%" {
		t.Fatalf("t+1wk: got %q", res.TPlus1Wk)
	}
	if res.TPlus52WkHigh != "540.00" {
		t.Fatalf("52wk high: got %q", res.TPlus52WkHigh)
	}
}

func TestAnalyzeShortSeries(t *testing.T) {
	series := flatSeries("SHORT", 20, 100, 1000)
	cfg := defaultCfg()
	if a := Analyze(series, cfg, nil); a != nil {
		t.Fatalf("expected nil analytics for 20 bars, got %+v", a)
	}
}

func TestAnalyzeVolumeRatio(t *testing.T) {
	series := flatSeries("VOL", 60, 100, 1000)
	series.Candles[59].Volume = 3000 // last day spikes to 3x

	cfg := defaultCfg()
	a := Analyze(series, cfg, nil)
	if a == nil {
		t.Fatalf("expected analytics")
	}
	// avg20 includes the spike day: (19*1000 + 3000)/20 = 1100
	want := 3000.0 / 1100.0
	if diff := a.VolumeRatio - want; diff > 0.001 || diff < -0.001 {
		t.Fatalf("volume ratio: got %v want %v", a.VolumeRatio, want)
	}
}

func TestAnalyzeBacktestTruncation(t *testing.T) {
	series := flatSeries("BT", 120, 100, 1000)
	cut := series.Candles[79].Time
	for i := 80; i < 120; i++ {
		series.Candles[i].Close = 110 // +10% after the cut
	}

	cfg := defaultCfg()
	a := Analyze(series, cfg, &cut)
	if a == nil {
		t.Fatalf("expected analytics")
	}
	if a.LastClose != 100 {
		t.Fatalf("analytics should stop at the cut: close %v", a.LastClose)
	}
	if a.Backtest == nil {
		t.Fatalf("expected backtest snapshot")
	}
	if a.Backtest.TPlus1D < 9.9 || a.Backtest.TPlus1D > 10.1 {
		t.Fatalf("t+1d return: got %v want ~10", a.Backtest.TPlus1D)
	}
}

// flatSeries builds n daily bars at a constant close with constant volume.
func flatSeries(symbol string, n int, close, volume float64) *models.CandleSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close * 1.01,
			Low:    close * 0.99,
			Close:  close,
			Volume: volume,
		}
	}
	return &models.CandleSeries{Symbol: symbol, Candles: candles}
}
