package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ScreenPull/internal/domain/models"
	"ScreenPull/internal/domain/repository"
	"ScreenPull/internal/service/ratelimit"
	"ScreenPull/pkg/cache"
	xhttp "ScreenPull/pkg/http"
	applogger "ScreenPull/pkg/logger"
)

// Option configures Service.
type Option func(*Service)

// Service fetches daily OHLCV history from the Yahoo chart endpoint.
// Fetches are rate limited per host and cached per symbol+period.
type Service struct {
	client       *xhttp.Client
	baseURL      string
	interval     string
	symbolSuffix string

	cache    cache.Service
	cacheTTL time.Duration

	limiter      *ratelimit.Limiter
	rateCapacity float64
	rateRefill   float64

	archive repository.CandleStore
	logger  *applogger.Logger
}

// NewService creates a market-data service.
func NewService(baseURL string, lgr *applogger.Logger, opts ...Option) *Service {
	s := &Service{
		client:       xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		baseURL:      strings.TrimRight(baseURL, "/"),
		interval:     "1d",
		symbolSuffix: ".NS",
		cacheTTL:     15 * time.Minute,
		limiter:      ratelimit.New(),
		rateCapacity: 5,
		rateRefill:   2,
		logger:       lgr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithTimeout sets the upstream request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.client = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// WithInterval sets the bar interval (default "1d").
func WithInterval(interval string) Option {
	return func(s *Service) { s.interval = interval }
}

// WithSymbolSuffix sets the exchange suffix appended to bare symbols.
func WithSymbolSuffix(suffix string) Option {
	return func(s *Service) { s.symbolSuffix = suffix }
}

// WithCache enables series caching.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithRateLimit sets the per-host token bucket parameters.
func WithRateLimit(capacity, refillPerSec float64) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.rateCapacity = capacity
		}
		if refillPerSec > 0 {
			s.rateRefill = refillPerSec
		}
	}
}

// WithArchive stores every fetched series in the candle archive.
func WithArchive(store repository.CandleStore) Option {
	return func(s *Service) { s.archive = store }
}

// chartResponse mirrors the Yahoo v8 chart payload. Null bars appear as nil
// entries in the quote columns.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the daily series for symbol covering period (e.g. "300d").
// An empty upstream series maps to ErrNoData.
func (s *Service) Fetch(ctx context.Context, symbol, period string) (*models.CandleSeries, error) {
	ticker := s.normalize(symbol)
	cacheKey := cache.GenerateKeyWithParams("candles", ticker, period, s.interval)

	if s.cache != nil {
		var cached models.CandleSeries
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Len() > 0 {
			return &cached, nil
		}
	}

	if err := s.limiter.Wait(ctx, s.baseURL, s.rateCapacity, s.rateRefill); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var resp chartResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", s.baseURL, url.PathEscape(ticker)),
		QueryParams: map[string][]string{
			"range":    {period},
			"interval": {s.interval},
			"events":   {"history"},
		},
		Headers: map[string]string{
			"User-Agent": "screenpull/1.0",
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("chart request %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, repository.ErrNoData
	}

	series := buildSeries(symbol, &resp)
	if series.Len() == 0 {
		return nil, repository.ErrNoData
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, series, s.cacheTTL); err != nil {
			s.logger.Warn("candle cache write failed",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	if s.archive != nil {
		if err := s.archive.Store(ctx, series); err != nil {
			s.logger.Warn("candle archive write failed",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	return series, nil
}

// normalize appends the exchange suffix to bare symbols. Index tickers ("^")
// and symbols already carrying an exchange are left alone.
func (s *Service) normalize(symbol string) string {
	if s.symbolSuffix == "" || strings.HasPrefix(symbol, "^") || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + s.symbolSuffix
}

func buildSeries(symbol string, resp *chartResponse) *models.CandleSeries {
	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return &models.CandleSeries{Symbol: symbol}
	}
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := models.Candle{Time: time.Unix(ts, 0).UTC()}
		if v := at(quote.Open, i); v != nil {
			c.Open = *v
		}
		if v := at(quote.High, i); v != nil {
			c.High = *v
		}
		if v := at(quote.Low, i); v != nil {
			c.Low = *v
		}
		if v := at(quote.Volume, i); v != nil {
			c.Volume = *v
		}
		v := at(quote.Close, i)
		if v == nil {
			continue // holiday gap, no bar
		}
		c.Close = *v
		candles = append(candles, c)
	}

	return &models.CandleSeries{Symbol: symbol, Candles: candles}
}

func at(col []*float64, i int) *float64 {
	if i < len(col) {
		return col[i]
	}
	return nil
}
