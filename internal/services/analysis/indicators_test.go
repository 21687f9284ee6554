package analysis

import (
	"math"
	"testing"

	"ScreenPull/internal/domain/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("expected NaN warmup, got %v", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(got[i+2], w) {
			t.Fatalf("sma[%d]: got %v want %v", i+2, got[i+2], w)
		}
	}
}

func TestEMASeededWithSMA(t *testing.T) {
	got := EMA([]float64{1, 2, 3, 4}, 3)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("expected NaN warmup, got %v", got[:2])
	}
	if !almostEqual(got[2], 2) {
		t.Fatalf("ema seed: got %v want 2", got[2])
	}
	// k = 2/(3+1) = 0.5, next = (4-2)*0.5 + 2 = 3
	if !almostEqual(got[3], 3) {
		t.Fatalf("ema[3]: got %v want 3", got[3])
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	got := RSI(closes, 14)
	if !math.IsNaN(got[13]) {
		t.Fatalf("expected NaN before window fills, got %v", got[13])
	}
	if got[15] != 100 {
		t.Fatalf("monotonic rise should give RSI 100, got %v", got[15])
	}
}

func TestRSIMixed(t *testing.T) {
	// Alternating +2/-1 moves: avg gain 1, avg loss 0.5, RS=2, RSI=66.67.
	closes := make([]float64, 29)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 2
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	got := Last(RSI(closes, 14))
	want := 100 - 100/(1+2.0)
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("rsi: got %v want %v", got, want)
	}
}

func TestHighLow(t *testing.T) {
	highs := []float64{10, 20, 15, 12}
	lows := []float64{8, 9, 7, 11}
	hi, lo := HighLow(highs, lows, 3)
	if hi != 20 || lo != 7 {
		t.Fatalf("got hi=%v lo=%v want hi=20 lo=7", hi, lo)
	}

	// Window longer than history clamps to the full series.
	hi, lo = HighLow(highs, lows, 100)
	if hi != 20 || lo != 7 {
		t.Fatalf("clamped: got hi=%v lo=%v", hi, lo)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}, 2); !almostEqual(got, 3.5) {
		t.Fatalf("mean: got %v want 3.5", got)
	}
	if got := Mean([]float64{1, 2}, 10); !almostEqual(got, 1.5) {
		t.Fatalf("short mean: got %v want 1.5", got)
	}
}

func TestDetectPatternBullishInsideBar(t *testing.T) {
	candles := []models.Candle{
		{Open: 110, High: 112, Low: 98, Close: 100},  // big red bar
		{Open: 101, High: 106, Low: 100, Close: 105}, // green inside bar
	}
	if got := DetectPattern(candles); got != "Bullish Inside Bar" {
		t.Fatalf("got %q want Bullish Inside Bar", got)
	}
}

func TestDetectPatternNone(t *testing.T) {
	candles := []models.Candle{
		{Open: 100, High: 112, Low: 98, Close: 110},
		{Open: 110, High: 125, Low: 109, Close: 124},
	}
	if got := DetectPattern(candles); got != "" {
		t.Fatalf("expected no pattern, got %q", got)
	}
}
