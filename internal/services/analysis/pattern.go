package analysis

import "ScreenPull/internal/domain/models"

// Pattern names emitted by DetectPattern.
const (
	PatternBullishInsideBar = "Bullish Inside Bar"
	PatternBearishInsideBar = "Bearish Inside Bar"
	PatternNarrowRange      = "NR4"
)

// DetectPattern tags the most recent bar with a simple candle pattern.
// Inside bars are checked first, then a 4-bar narrow range.
func DetectPattern(candles []models.Candle) string {
	n := len(candles)
	if n < 2 {
		return ""
	}
	cur, prev := candles[n-1], candles[n-2]
	if cur.High <= prev.High && cur.Low >= prev.Low {
		if cur.Close >= cur.Open {
			return PatternBullishInsideBar
		}
		return PatternBearishInsideBar
	}
	if n >= 4 {
		r := cur.High - cur.Low
		narrowest := true
		for i := n - 4; i < n-1; i++ {
			if candles[i].High-candles[i].Low <= r {
				narrowest = false
				break
			}
		}
		if narrowest {
			return PatternNarrowRange
		}
	}
	return ""
}
