package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"ScreenPull/internal/domain/models"
	internalrepo "ScreenPull/internal/repository"
	"ScreenPull/pkg/logger"
)

type stubMetrics struct{}

func (stubMetrics) JobStarted()                     {}
func (stubMetrics) JobFinished(string, float64)     {}
func (stubMetrics) SymbolScreened(string)           {}
func (stubMetrics) RecordProgress(string, float64)  {}
func (stubMetrics) ClearProgress(string)            {}

// countingMetrics counts job starts on top of the no-op stub.
type countingMetrics struct {
	stubMetrics
	started int
}

func (m *countingMetrics) JobStarted() { m.started++ }

type stubSymbols struct {
	list []string
	err  error
}

func (s stubSymbols) Resolve(ctx context.Context, index models.IndexType) ([]string, error) {
	return s.list, s.err
}

// stubMarket serves canned series per symbol. When block is set it waits for
// cancellation instead, which pins the job in RUNNING.
type stubMarket struct {
	series map[string]*models.CandleSeries
	errs   map[string]error
	block  bool
}

func (m *stubMarket) Fetch(ctx context.Context, symbol, period string) (*models.CandleSeries, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := m.errs[symbol]; err != nil {
		return nil, err
	}
	if s := m.series[symbol]; s != nil {
		return s, nil
	}
	return nil, errors.New("unexpected symbol " + symbol)
}

func newTestOrchestrator(t *testing.T, symbols stubSymbols, market *stubMarket) *Orchestrator {
	t.Helper()
	cfg := models.DefaultScreeningConfig()
	cfg.PaceDelay = 0
	return NewOrchestrator(
		internalrepo.NewMemoryJobStore(0),
		symbols,
		market,
		internalrepo.NewNoopEventPublisher(),
		stubMetrics{},
		logger.Nop(),
		cfg,
	)
}

func waitTerminal(t *testing.T, o *Orchestrator, id string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := o.GetStatus(context.Background(), id)
		if err != nil {
			t.Fatalf("get status: %v", err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func TestSubmitRunsToCompletion(t *testing.T) {
	market := &stubMarket{
		series: map[string]*models.CandleSeries{
			"AAA": flatSeries("AAA", 60, 100, 1000), // passes the price band
			"BBB": flatSeries("BBB", 60, 5, 1000),   // below min_price
		},
		errs: map[string]error{"CCC": errors.New("upstream 500")},
	}
	o := newTestOrchestrator(t, stubSymbols{list: []string{"AAA", "BBB", "CCC"}}, market)

	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, o, id)
	if job.Status != models.JobCompleted {
		t.Fatalf("status: got %s want completed (%s)", job.Status, job.ErrorMessage)
	}
	if job.TotalStocks != 3 || job.ScreenedStocks != 3 {
		t.Fatalf("accounting: total=%d screened=%d", job.TotalStocks, job.ScreenedStocks)
	}
	if job.FoundStocks != 1 || len(job.Results) != 1 || job.Results[0].Stock != "AAA" {
		t.Fatalf("results: %+v", job.Results)
	}
	if job.Progress != 100 {
		t.Fatalf("progress: got %d want 100", job.Progress)
	}
	if job.CompletedAt == nil || job.StartedAt == nil {
		t.Fatalf("timestamps missing: %+v", job)
	}

	results, err := o.GetResults(context.Background(), id)
	if err != nil || len(results) != 1 {
		t.Fatalf("get results: %v %+v", err, results)
	}
}

func TestResultsKeepSubmissionOrder(t *testing.T) {
	series := map[string]*models.CandleSeries{}
	symbols := []string{"ZZZ", "MMM", "AAA"}
	for _, s := range symbols {
		series[s] = flatSeries(s, 60, 100, 1000)
	}
	o := newTestOrchestrator(t, stubSymbols{list: symbols}, &stubMarket{series: series})

	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, o, id)
	if len(job.Results) != 3 {
		t.Fatalf("results: got %d want 3", len(job.Results))
	}
	for i, want := range symbols {
		if job.Results[i].Stock != want {
			t.Fatalf("order[%d]: got %s want %s", i, job.Results[i].Stock, want)
		}
	}
}

func TestSubmitEmptyUniverseCompletes(t *testing.T) {
	o := newTestOrchestrator(t, stubSymbols{list: nil}, &stubMarket{})

	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, o, id)
	if job.Status != models.JobCompleted {
		t.Fatalf("status: got %s want completed", job.Status)
	}
	if job.TotalStocks != 0 || job.Progress != 100 {
		t.Fatalf("empty run: total=%d progress=%d", job.TotalStocks, job.Progress)
	}
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	o := newTestOrchestrator(t, stubSymbols{}, &stubMarket{})

	_, err := o.Submit(context.Background(), &models.ScreeningRequest{}, nil)
	if !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	lo, hi := 60, 40
	_, err = o.Submit(context.Background(), &models.ScreeningRequest{
		IndexType: models.IndexNifty50,
		Criteria:  models.CriteriaRSI,
		RSIMin:    &lo,
		RSIMax:    &hi,
	}, nil)
	if !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for inverted rsi band, got %v", err)
	}

	if jobs, _ := o.ListHistory(context.Background(), 10, 0); len(jobs) != 0 {
		t.Fatalf("rejected requests must not allocate jobs: %+v", jobs)
	}
}

func TestSubmitFailsOnUnknownUniverse(t *testing.T) {
	o := newTestOrchestrator(t, stubSymbols{err: errors.New("unknown index")}, &stubMarket{})

	req := &models.ScreeningRequest{IndexType: "99", Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job := waitTerminal(t, o, id)
	if job.Status != models.JobFailed {
		t.Fatalf("status: got %s want failed", job.Status)
	}
	if job.ErrorMessage == "" {
		t.Fatalf("failed job should carry an error message")
	}
}

func TestCancelRunningJob(t *testing.T) {
	market := &stubMarket{block: true}
	o := newTestOrchestrator(t, stubSymbols{list: []string{"AAA", "BBB"}}, market)

	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Wait for the run to actually start before cancelling.
	deadline := time.Now().Add(5 * time.Second)
	for {
		job, err := o.GetStatus(context.Background(), id)
		if err != nil {
			t.Fatalf("get status: %v", err)
		}
		if job.Status == models.JobRunning {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never started running")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if err := o.Cancel(context.Background(), id); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	job := waitTerminal(t, o, id)
	if job.Status != models.JobCancelled {
		t.Fatalf("status: got %s want cancelled", job.Status)
	}

	if err := o.Cancel(context.Background(), id); !errors.Is(err, models.ErrJobTerminal) {
		t.Fatalf("second cancel: got %v want ErrJobTerminal", err)
	}
}

func TestCancelPendingJobNeverRuns(t *testing.T) {
	store := internalrepo.NewMemoryJobStore(0)
	metrics := &countingMetrics{}
	cfg := models.DefaultScreeningConfig()
	cfg.PaceDelay = 0
	o := NewOrchestrator(store, stubSymbols{list: []string{"AAA"}}, &stubMarket{block: true},
		internalrepo.NewNoopEventPublisher(), metrics, logger.Nop(), cfg)

	ctx := context.Background()
	if err := store.Create(ctx, models.NewJob("j-pending")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := o.Cancel(ctx, "j-pending"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	job, err := o.GetStatus(ctx, "j-pending")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if job.Status != models.JobCancelled {
		t.Fatalf("status: got %s want cancelled", job.Status)
	}
	if job.StartedAt != nil {
		t.Fatalf("a cancelled pending job must never start: %v", job.StartedAt)
	}
	if job.ErrorMessage != "" {
		t.Fatalf("cancellation is not an error: %q", job.ErrorMessage)
	}
	if job.CompletedAt == nil {
		t.Fatalf("terminal job needs a completion time")
	}

	// A run scheduled before the cancel landed aborts without touching the job.
	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	o.wg.Add(1)
	o.execute(context.Background(), "j-pending", req, &cfg)

	after, err := o.GetStatus(ctx, "j-pending")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if after.Status != models.JobCancelled || after.StartedAt != nil || after.ScreenedStocks != 0 {
		t.Fatalf("aborted run mutated the job: %+v", after)
	}
	if metrics.started != 0 {
		t.Fatalf("aborted run must not count as started: %d", metrics.started)
	}

	again, err := o.GetStatus(ctx, "j-pending")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if !reflect.DeepEqual(after, again) {
		t.Fatalf("terminal snapshot drifted:\n%+v\n%+v", after, again)
	}
}

func TestCancelUnknownJob(t *testing.T) {
	o := newTestOrchestrator(t, stubSymbols{}, &stubMarket{})
	if err := o.Cancel(context.Background(), "nope"); !errors.Is(err, models.ErrJobNotFound) {
		t.Fatalf("got %v want ErrJobNotFound", err)
	}
}

func TestGetResultsBeforeCompletion(t *testing.T) {
	market := &stubMarket{block: true}
	o := newTestOrchestrator(t, stubSymbols{list: []string{"AAA"}}, market)

	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := o.GetResults(context.Background(), id); !errors.Is(err, models.ErrJobNotCompleted) {
		t.Fatalf("got %v want ErrJobNotCompleted", err)
	}

	if err := o.Cancel(context.Background(), id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	waitTerminal(t, o, id)
}

func TestShutdownDrainsJobs(t *testing.T) {
	market := &stubMarket{block: true}
	o := newTestOrchestrator(t, stubSymbols{list: []string{"AAA"}}, market)

	req := &models.ScreeningRequest{IndexType: models.IndexNifty50, Criteria: models.CriteriaFullScreening}
	id, err := o.Submit(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	job, err := o.GetStatus(context.Background(), id)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if job.Status != models.JobCancelled {
		t.Fatalf("status after shutdown: got %s want cancelled", job.Status)
	}
}

func TestMergeConfigOverrides(t *testing.T) {
	base := models.DefaultScreeningConfig()
	out := mergeConfig(base, models.ScreeningConfig{
		MinPrice:    100,
		Concurrency: 12,
		UseEMA:      true,
	})
	if out.MinPrice != 100 || out.Concurrency != 12 || !out.UseEMA {
		t.Fatalf("override lost: %+v", out)
	}
	if out.MaxPrice != base.MaxPrice || out.Period != base.Period {
		t.Fatalf("zero override fields must keep base values: %+v", out)
	}

	bad := models.ScreeningConfig{MinPrice: 500, MaxPrice: 100}
	merged := mergeConfig(base, bad)
	if err := validateConfig(&merged); !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("inverted price band: got %v want ErrInvalidRequest", err)
	}
}
