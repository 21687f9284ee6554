package repository

import (
	"context"
	"errors"
	"time"

	"ScreenPull/internal/domain/models"
)

// ErrUnknownIndex is returned for an unrecognized universe selector.
var ErrUnknownIndex = errors.New("unknown index type")

// ErrNoData signals that the market-data source has no series for a symbol.
var ErrNoData = errors.New("no market data")

// SymbolProvider resolves a universe selector into an ordered symbol list.
type SymbolProvider interface {
	Resolve(ctx context.Context, index models.IndexType) ([]string, error)
}

// MarketDataProvider fetches a daily OHLCV series for a symbol.
// Transport failures are returned as errors; an empty series is ErrNoData.
type MarketDataProvider interface {
	Fetch(ctx context.Context, symbol, period string) (*models.CandleSeries, error)
}

// JobStore holds job records keyed by job id. Update applies an atomic
// read-modify-write; an error returned by the mutator aborts the update and
// is passed through unchanged.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	Update(ctx context.Context, id string, mutate func(*models.Job) error) (*models.Job, error)
	List(ctx context.Context, limit, offset int) ([]models.JobSummary, error)
}

// CandleStore archives fetched daily candles for reuse across runs.
type CandleStore interface {
	Store(ctx context.Context, series *models.CandleSeries) error
	Load(ctx context.Context, symbol string, from time.Time) (*models.CandleSeries, error)
	Close() error
}

// EventPublisher emits job lifecycle and progress events to an external bus.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, ev *models.JobEvent) error
	Close() error
}

// Metrics records screening telemetry.
type Metrics interface {
	JobStarted()
	JobFinished(status string, seconds float64)
	SymbolScreened(outcome string)
	RecordProgress(jobID string, progress float64)
	ClearProgress(jobID string)
}
