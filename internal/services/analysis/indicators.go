package analysis

import "math"

// SMA over the last p points; NaN until enough history accumulates.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// EMA with smoothing 2/(p+1), seeded with SMA(p); NaN during warmup.
func EMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	if len(x) < p {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	k := 2.0 / float64(p+1)
	var seed float64
	for i := 0; i < p; i++ {
		seed += x[i]
		if i < p-1 {
			out[i] = math.NaN()
		}
	}
	out[p-1] = seed / float64(p)
	for i := p; i < len(x); i++ {
		out[i] = (x[i]-out[i-1])*k + out[i-1]
	}
	return out
}

// RSI over period p using rolling average gains/losses. Returns NaN until
// p+1 closes are available; 100 when there are no losses in the window.
func RSI(closes []float64, p int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if p <= 0 || len(closes) <= p {
		return out
	}
	for i := p; i < len(closes); i++ {
		var gains, losses float64
		for j := i - p + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gains += d
			} else {
				losses -= d
			}
		}
		avgGain := gains / float64(p)
		avgLoss := losses / float64(p)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// HighLow returns the max high and min low over the last n elements.
func HighLow(highs, lows []float64, n int) (hi, lo float64) {
	if len(highs) == 0 || len(lows) == 0 || n <= 0 {
		return math.NaN(), math.NaN()
	}
	start := len(highs) - n
	if start < 0 {
		start = 0
	}
	hi, lo = highs[start], lows[start]
	for i := start + 1; i < len(highs); i++ {
		if highs[i] > hi {
			hi = highs[i]
		}
		if lows[i] < lo {
			lo = lows[i]
		}
	}
	return hi, lo
}

// Mean over the last n elements.
func Mean(x []float64, n int) float64 {
	if len(x) == 0 || n <= 0 {
		return math.NaN()
	}
	start := len(x) - n
	if start < 0 {
		start = 0
	}
	var sum float64
	for i := start; i < len(x); i++ {
		sum += x[i]
	}
	return sum / float64(len(x)-start)
}

// Last returns the final element, or NaN for an empty slice.
func Last(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[len(x)-1]
}
