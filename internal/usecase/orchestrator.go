package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ScreenPull/internal/domain/models"
	drepo "ScreenPull/internal/domain/repository"
	"ScreenPull/pkg/logger"
)

// errRunAborted aborts the PENDING→RUNNING transition when the job was
// cancelled before execution started.
var errRunAborted = errors.New("run aborted")

// Orchestrator owns the job lifecycle: it validates and submits requests,
// drives the worker pool over the resolved symbol list, aggregates progress
// and results, honors cancellation, and finalizes terminal status.
type Orchestrator struct {
	store   drepo.JobStore
	symbols drepo.SymbolProvider
	market  drepo.MarketDataProvider
	events  drepo.EventPublisher
	metrics drepo.Metrics
	logger  *logger.Logger
	cfg     models.ScreeningConfig

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates an orchestrator with the given collaborators and
// base screening config. events may be a no-op publisher but not nil.
func NewOrchestrator(
	store drepo.JobStore,
	symbols drepo.SymbolProvider,
	market drepo.MarketDataProvider,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	lgr *logger.Logger,
	cfg models.ScreeningConfig,
) *Orchestrator {
	cfg.Normalize()
	return &Orchestrator{
		store:   store,
		symbols: symbols,
		market:  market,
		events:  events,
		metrics: metrics,
		logger:  lgr,
		cfg:     cfg,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit validates the request, creates a PENDING job, and schedules
// execution asynchronously. Invalid requests are rejected before any job id
// is allocated. Returns the new job id immediately.
func (o *Orchestrator) Submit(ctx context.Context, req *models.ScreeningRequest, override *models.ScreeningConfig) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	cfg := o.cfg
	if override != nil {
		cfg = mergeConfig(cfg, *override)
	}
	if err := validateConfig(&cfg); err != nil {
		return "", err
	}

	id := uuid.NewString()
	job := models.NewJob(id)
	if err := o.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancels[id] = cancel
	o.mu.Unlock()

	o.wg.Add(1)
	go o.execute(runCtx, id, req, &cfg)

	o.logger.Info("screening job submitted",
		logger.String("job_id", id),
		logger.String("index", string(req.IndexType)),
		logger.String("criteria", string(req.Criteria)))
	return id, nil
}

// GetStatus returns a snapshot of the job. Snapshots of terminal jobs are
// stable across calls.
func (o *Orchestrator) GetStatus(ctx context.Context, id string) (*models.Job, error) {
	return o.store.Get(ctx, id)
}

// GetResults returns the result rows of a COMPLETED job.
func (o *Orchestrator) GetResults(ctx context.Context, id string) ([]models.StockResult, error) {
	job, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobCompleted {
		return nil, fmt.Errorf("%w: status is %s", models.ErrJobNotCompleted, job.Status)
	}
	return job.Results, nil
}

// ListHistory returns job summaries ordered by creation time, newest first.
func (o *Orchestrator) ListHistory(ctx context.Context, limit, offset int) ([]models.JobSummary, error) {
	return o.store.List(ctx, limit, offset)
}

// Cancel requests cooperative cancellation. A PENDING job transitions to
// CANCELLED directly; a RUNNING job is signalled and finalizes at the next
// per-symbol boundary. Terminal jobs yield ErrJobTerminal.
func (o *Orchestrator) Cancel(ctx context.Context, id string) error {
	_, err := o.store.Update(ctx, id, func(j *models.Job) error {
		if j.Status.Terminal() {
			return models.ErrJobTerminal
		}
		if j.Status == models.JobPending {
			now := time.Now().UTC()
			j.Status = models.JobCancelled
			j.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.mu.Lock()
	cancel := o.cancels[id]
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.logger.Info("screening job cancel requested", logger.String("job_id", id))
	return nil
}

// Shutdown cancels all live jobs and waits for their goroutines to drain.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	for _, cancel := range o.cancels {
		cancel()
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute drives one screening run to a terminal state. Per-symbol failures
// are absorbed as outcomes; only orchestration-level failures mark the job
// FAILED.
func (o *Orchestrator) execute(ctx context.Context, id string, req *models.ScreeningRequest, cfg *models.ScreeningConfig) {
	defer o.wg.Done()
	defer func() {
		o.mu.Lock()
		delete(o.cancels, id)
		o.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			o.fail(id, fmt.Errorf("screening run panic: %v", r))
		}
	}()

	start := time.Now()
	_, err := o.store.Update(ctx, id, func(j *models.Job) error {
		if j.Status != models.JobPending {
			return errRunAborted
		}
		now := time.Now().UTC()
		j.Status = models.JobRunning
		j.StartedAt = &now
		return nil
	})
	if err != nil {
		if !errors.Is(err, errRunAborted) {
			o.logger.Error("job start transition failed", logger.String("job_id", id), logger.Error(err))
		}
		return
	}
	o.metrics.JobStarted()

	symbols, err := o.resolveSymbols(ctx, req)
	if err != nil {
		o.fail(id, err)
		o.metrics.JobFinished(string(models.JobFailed), time.Since(start).Seconds())
		return
	}

	total := len(symbols)
	if _, err := o.store.Update(ctx, id, func(j *models.Job) error {
		j.TotalStocks = total
		return nil
	}); err != nil {
		o.logger.Error("job update failed", logger.String("job_id", id), logger.Error(err))
		return
	}

	// Original submission order decides the final result ordering.
	order := make(map[string]int, total)
	for i, s := range symbols {
		order[s] = i
	}

	var results []models.StockResult
	screened := 0

	if total > 0 {
		pool := NewWorkerPool(cfg.Concurrency, cfg.PaceDelay)
		outcomes := pool.Run(ctx, symbols, o.screenOne(req, cfg))

		for oc := range outcomes {
			screened++
			switch {
			case oc.Err != nil:
				o.metrics.SymbolScreened("error")
				o.logger.Debug("symbol skipped",
					logger.String("job_id", id),
					logger.String("symbol", oc.Symbol),
					logger.Error(oc.Err))
			case oc.Result != nil:
				o.metrics.SymbolScreened("match")
				results = append(results, *oc.Result)
			default:
				o.metrics.SymbolScreened("reject")
			}
			o.recordProgress(id, screened, len(results), total)
		}
	}

	sort.SliceStable(results, func(i, k int) bool {
		return order[results[i].Stock] < order[results[k].Stock]
	})

	status := models.JobCompleted
	if ctx.Err() != nil {
		status = models.JobCancelled
	}
	elapsed := time.Since(start).Seconds()

	job, err := o.store.Update(context.Background(), id, func(j *models.Job) error {
		if j.Status.Terminal() {
			return nil // cancel finalized the pending job first
		}
		now := time.Now().UTC()
		j.Status = status
		j.CompletedAt = &now
		j.ExecutionTime = elapsed
		j.Results = results
		j.ScreenedStocks = screened
		j.FoundStocks = len(results)
		if status == models.JobCompleted {
			j.Progress = 100
		}
		return nil
	})
	if err != nil {
		o.logger.Error("job finalize failed", logger.String("job_id", id), logger.Error(err))
		return
	}

	o.metrics.JobFinished(string(status), elapsed)
	o.metrics.ClearProgress(id)
	o.publish(job)
	o.logger.Info("screening job finished",
		logger.String("job_id", id),
		logger.String("status", string(status)),
		logger.Int("screened", screened),
		logger.Int("found", len(results)),
		logger.Float64("seconds", elapsed))
}

// resolveSymbols prefers the explicit symbol list, falling back to the
// universe provider. An empty resolved list is not an error.
func (o *Orchestrator) resolveSymbols(ctx context.Context, req *models.ScreeningRequest) ([]string, error) {
	if len(req.StockCodes) > 0 {
		return req.StockCodes, nil
	}
	symbols, err := o.symbols.Resolve(ctx, req.IndexType)
	if err != nil {
		return nil, fmt.Errorf("resolve universe %q: %w", req.IndexType, err)
	}
	return symbols, nil
}

// screenOne builds the fetch→analyze→evaluate pipeline for a run.
func (o *Orchestrator) screenOne(req *models.ScreeningRequest, cfg *models.ScreeningConfig) SymbolFunc {
	return func(ctx context.Context, symbol string) (*models.StockResult, error) {
		series, err := o.market.Fetch(ctx, symbol, cfg.Period)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		analytics := Analyze(series, cfg, req.BacktestDate)
		if analytics == nil {
			return nil, nil // insufficient history: a reject, not a failure
		}
		return Evaluate(symbol, analytics, req, cfg), nil
	}
}

// recordProgress folds one outcome into the job record and publishes the
// updated snapshot. Progress is floor(100*screened/total) and never moves
// backwards while the job runs.
func (o *Orchestrator) recordProgress(id string, screened, found, total int) {
	job, err := o.store.Update(context.Background(), id, func(j *models.Job) error {
		j.ScreenedStocks = screened
		j.FoundStocks = found
		if total > 0 {
			j.Progress = screened * 100 / total
		}
		return nil
	})
	if err != nil {
		o.logger.Error("progress update failed", logger.String("job_id", id), logger.Error(err))
		return
	}
	o.metrics.RecordProgress(id, float64(job.Progress))
	o.publish(job)
}

// fail marks the job FAILED with a human-readable message, unless it already
// reached a terminal state.
func (o *Orchestrator) fail(id string, cause error) {
	o.logger.Error("screening job failed", logger.String("job_id", id), logger.Error(cause))
	job, err := o.store.Update(context.Background(), id, func(j *models.Job) error {
		if j.Status.Terminal() {
			return nil
		}
		now := time.Now().UTC()
		j.Status = models.JobFailed
		j.CompletedAt = &now
		j.ErrorMessage = cause.Error()
		return nil
	})
	if err != nil {
		o.logger.Error("job fail transition lost", logger.String("job_id", id), logger.Error(err))
		return
	}
	o.publish(job)
}

func (o *Orchestrator) publish(job *models.Job) {
	if job == nil {
		return
	}
	ev := &models.JobEvent{
		JobID:          job.ID,
		Status:         job.Status,
		Progress:       job.Progress,
		TotalStocks:    job.TotalStocks,
		ScreenedStocks: job.ScreenedStocks,
		FoundStocks:    job.FoundStocks,
		Timestamp:      time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.events.PublishJobEvent(ctx, ev); err != nil {
		o.logger.Warn("job event publish failed", logger.String("job_id", job.ID), logger.Error(err))
	}
}

// mergeConfig overlays non-zero override fields on the base config.
func mergeConfig(base, override models.ScreeningConfig) models.ScreeningConfig {
	out := base
	if override.Period != "" {
		out.Period = override.Period
	}
	if override.DaysToLookback > 0 {
		out.DaysToLookback = override.DaysToLookback
	}
	if override.MinPrice > 0 {
		out.MinPrice = override.MinPrice
	}
	if override.MaxPrice > 0 {
		out.MaxPrice = override.MaxPrice
	}
	if override.VolumeRatio > 0 {
		out.VolumeRatio = override.VolumeRatio
	}
	if override.ConsolidationPercentage > 0 {
		out.ConsolidationPercentage = override.ConsolidationPercentage
	}
	if override.Concurrency > 0 {
		out.Concurrency = override.Concurrency
	}
	if override.PaceDelay > 0 {
		out.PaceDelay = override.PaceDelay
	}
	out.UseEMA = base.UseEMA || override.UseEMA
	out.CacheEnabled = base.CacheEnabled || override.CacheEnabled
	return out
}

func validateConfig(cfg *models.ScreeningConfig) error {
	cfg.Normalize()
	if cfg.MinPrice >= cfg.MaxPrice {
		return fmt.Errorf("%w: min_price must be below max_price", models.ErrInvalidRequest)
	}
	return nil
}
