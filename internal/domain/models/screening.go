package models

import (
	"errors"
	"fmt"
	"time"
)

// IndexType selects the symbol universe to screen.
type IndexType string

const (
	IndexByStockName IndexType = "0"
	IndexNifty50     IndexType = "1"
	IndexNiftyNext50 IndexType = "2"
	IndexNifty100    IndexType = "3"
	IndexNifty200    IndexType = "4"
	IndexNifty500    IndexType = "5"
	IndexAllStocks   IndexType = "12"
	IndexFNOStocks   IndexType = "14"
	IndexUSSP500     IndexType = "15"
)

// Criteria selects the screening rule applied to per-symbol analytics.
type Criteria string

const (
	CriteriaFullScreening         Criteria = "0"
	CriteriaBreakoutConsolidation Criteria = "1"
	CriteriaBreakoutVolume        Criteria = "2"
	CriteriaConsolidating         Criteria = "3"
	CriteriaLowestVolume          Criteria = "4"
	CriteriaRSI                   Criteria = "5"
	CriteriaReversalSignals       Criteria = "6"
	CriteriaChartPatterns         Criteria = "7"
)

// ErrInvalidRequest marks a screening request rejected at submit time.
var ErrInvalidRequest = errors.New("invalid screening request")

// ScreeningRequest is the immutable input of one screening run.
type ScreeningRequest struct {
	IndexType    IndexType  `json:"index_type"`
	Criteria     Criteria   `json:"criteria"`
	StockCodes   []string   `json:"stock_codes,omitempty"` // overrides universe resolution
	BacktestDate *time.Time `json:"backtest_date,omitempty"`

	// Criteria-specific parameters.
	RSIMin     *int `json:"rsi_min,omitempty"`
	RSIMax     *int `json:"rsi_max,omitempty"`
	VolumeDays *int `json:"volume_days,omitempty"`
	MALength   *int `json:"ma_length,omitempty"`
	Lookback   *int `json:"lookback_candles,omitempty"`
}

// Validate checks cross-field invariants. Requests failing here never
// allocate a job id.
func (r *ScreeningRequest) Validate() error {
	if r.Criteria == "" {
		return fmt.Errorf("%w: criteria is required", ErrInvalidRequest)
	}
	if r.IndexType == "" && len(r.StockCodes) == 0 {
		return fmt.Errorf("%w: index_type or stock_codes is required", ErrInvalidRequest)
	}
	if r.RSIMin != nil && (*r.RSIMin < 0 || *r.RSIMin > 100) {
		return fmt.Errorf("%w: rsi_min out of range [0,100]", ErrInvalidRequest)
	}
	if r.RSIMax != nil && (*r.RSIMax < 0 || *r.RSIMax > 100) {
		return fmt.Errorf("%w: rsi_max out of range [0,100]", ErrInvalidRequest)
	}
	if r.RSIMin != nil && r.RSIMax != nil && *r.RSIMax <= *r.RSIMin {
		return fmt.Errorf("%w: rsi_max must be greater than rsi_min", ErrInvalidRequest)
	}
	return nil
}

// ScreeningConfig holds the tunable knobs of a run. Zero values are replaced
// by defaults; any subset may be overridden per request.
type ScreeningConfig struct {
	Period                  string        `json:"period" default:"300d"`
	DaysToLookback          int           `json:"days_to_lookback" default:"30"`
	MinPrice                float64       `json:"min_price" default:"30"`
	MaxPrice                float64       `json:"max_price" default:"10000"`
	VolumeRatio             float64       `json:"volume_ratio" default:"2.0"`
	ConsolidationPercentage float64       `json:"consolidation_percentage" default:"10"`
	Concurrency             int           `json:"concurrency" default:"5"`
	PaceDelay               time.Duration `json:"pace_delay" default:"100ms"`
	CacheEnabled            bool          `json:"cache_enabled" default:"true"`
	UseEMA                  bool          `json:"use_ema"`
}

// DefaultScreeningConfig returns the stock defaults used when a request
// carries no overrides.
func DefaultScreeningConfig() ScreeningConfig {
	return ScreeningConfig{
		Period:                  "300d",
		DaysToLookback:          30,
		MinPrice:                30,
		MaxPrice:                10000,
		VolumeRatio:             2.0,
		ConsolidationPercentage: 10,
		Concurrency:             5,
		PaceDelay:               100 * time.Millisecond,
		CacheEnabled:            true,
	}
}

// Normalize fills zero fields from defaults.
func (c *ScreeningConfig) Normalize() {
	def := DefaultScreeningConfig()
	if c.Period == "" {
		c.Period = def.Period
	}
	if c.DaysToLookback <= 0 {
		c.DaysToLookback = def.DaysToLookback
	}
	if c.MinPrice <= 0 {
		c.MinPrice = def.MinPrice
	}
	if c.MaxPrice <= 0 {
		c.MaxPrice = def.MaxPrice
	}
	if c.VolumeRatio <= 0 {
		c.VolumeRatio = def.VolumeRatio
	}
	if c.ConsolidationPercentage <= 0 {
		c.ConsolidationPercentage = def.ConsolidationPercentage
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.PaceDelay < 0 {
		c.PaceDelay = 0
	}
}

// StockResult is one row of screening output. Immutable once produced.
type StockResult struct {
	Stock         string  `json:"stock"`
	Consolidating string  `json:"consolidating"` // e.g. "Range = 7.4%"
	BreakingOut   string  `json:"breaking_out"`  // e.g. "BO: 1520.00"
	LTP           float64 `json:"ltp"`
	VolumeRatio   float64 `json:"volume"`
	MASignal      string  `json:"ma_signal"`
	RSI           int     `json:"rsi"`
	Trend         string  `json:"trend"`
	Pattern       string  `json:"pattern,omitempty"`

	// Backtest horizons, filled only when a backtest date was requested.
	TPlus1D       string `json:"t_plus_1d,omitempty"`
	TPlus1Wk      string `json:"t_plus_1wk,omitempty"`
	TPlus1Mo      string `json:"t_plus_1mo,omitempty"`
	TPlus6Mo      string `json:"t_plus_6mo,omitempty"`
	TPlus1Y       string `json:"t_plus_1y,omitempty"`
	TPlus52WkHigh string `json:"t_plus_52wk_high,omitempty"`
	TPlus52WkLow  string `json:"t_plus_52wk_low,omitempty"`
}

// SymbolAnalytics is the derived, per-symbol computation consumed by the
// criteria evaluator. Never persisted.
type SymbolAnalytics struct {
	LastClose        float64
	LastVolume       float64
	RSI              float64
	SMA50            float64
	SMA200           float64
	EMA50            float64
	EMA200           float64
	HasSMA200        bool
	AvgVolume20      float64
	VolumeRatio      float64
	HighLookback     float64
	LowLookback      float64
	ConsolidationPct float64
	Pattern          string

	Backtest *BacktestSnapshot
}

// BacktestSnapshot carries forward-return figures relative to a backtest date.
type BacktestSnapshot struct {
	TPlus1D  float64
	TPlus1Wk float64
	TPlus1Mo float64
	TPlus6Mo float64
	TPlus1Y  float64
	High52Wk float64
	Low52Wk  float64
}

// Candle is one OHLCV bar of a daily series.
type Candle struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

// CandleSeries is a time-ascending OHLCV series for one symbol.
type CandleSeries struct {
	Symbol  string   `json:"symbol"`
	Candles []Candle `json:"candles"`
}

// Len returns the number of bars.
func (s *CandleSeries) Len() int { return len(s.Candles) }

// Closes extracts the close column.
func (s *CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// TruncateAt returns the bars up to and including date and the remainder.
func (s *CandleSeries) TruncateAt(date time.Time) (head, tail []Candle) {
	for i, c := range s.Candles {
		if c.Time.After(date) {
			return s.Candles[:i], s.Candles[i:]
		}
	}
	return s.Candles, nil
}
