package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ScreenPull/internal/domain/models"
)

func collect(out <-chan Outcome) map[string]Outcome {
	got := make(map[string]Outcome)
	for oc := range out {
		got[oc.Symbol] = oc
	}
	return got
}

func TestWorkerPoolDeliversAllOutcomes(t *testing.T) {
	pool := NewWorkerPool(3, 0)
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}

	fn := func(ctx context.Context, symbol string) (*models.StockResult, error) {
		switch symbol {
		case "AAA":
			return &models.StockResult{Stock: symbol}, nil
		case "BBB":
			return nil, errors.New("boom")
		default:
			return nil, nil
		}
	}

	got := collect(pool.Run(context.Background(), symbols, fn))
	if len(got) != len(symbols) {
		t.Fatalf("outcomes: got %d want %d", len(got), len(symbols))
	}
	if got["AAA"].Result == nil || got["AAA"].Err != nil {
		t.Fatalf("AAA should match: %+v", got["AAA"])
	}
	if got["BBB"].Err == nil {
		t.Fatalf("BBB should carry the error")
	}
	if got["CCC"].Result != nil || got["CCC"].Err != nil {
		t.Fatalf("CCC should be a plain reject: %+v", got["CCC"])
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const limit = 2
	pool := NewWorkerPool(limit, 0)

	var current, peak int64
	fn := func(ctx context.Context, symbol string) (*models.StockResult, error) {
		n := atomic.AddInt64(&current, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return nil, nil
	}

	symbols := []string{"S1", "S2", "S3", "S4", "S5", "S6"}
	got := collect(pool.Run(context.Background(), symbols, fn))
	if len(got) != len(symbols) {
		t.Fatalf("outcomes: got %d want %d", len(got), len(symbols))
	}
	if p := atomic.LoadInt64(&peak); p > limit {
		t.Fatalf("concurrency peaked at %d, limit %d", p, limit)
	}
}

func TestWorkerPoolRecoversPanic(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	fn := func(ctx context.Context, symbol string) (*models.StockResult, error) {
		panic("bad candle math")
	}

	got := collect(pool.Run(context.Background(), []string{"AAA"}, fn))
	oc, ok := got["AAA"]
	if !ok || oc.Err == nil {
		t.Fatalf("panic should surface as an outcome error: %+v", oc)
	}
	if oc.Result != nil {
		t.Fatalf("panic outcome must not carry a result")
	}
}

func TestWorkerPoolCancellationStopsDispatch(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	ctx, cancel := context.WithCancel(context.Background())

	var started int64
	var once sync.Once
	fn := func(ctx context.Context, symbol string) (*models.StockResult, error) {
		atomic.AddInt64(&started, 1)
		once.Do(cancel) // cancel after the first symbol begins
		time.Sleep(5 * time.Millisecond)
		return nil, nil
	}

	symbols := make([]string, 50)
	for i := range symbols {
		symbols[i] = "S" + string(rune('A'+i%26))
	}

	deadline := time.After(2 * time.Second)
	out := pool.Run(ctx, symbols, fn)
	n := 0
	for {
		select {
		case _, ok := <-out:
			if !ok {
				if got := atomic.LoadInt64(&started); got >= int64(len(symbols)) {
					t.Fatalf("cancellation did not stop dispatch: %d started", got)
				}
				if n == 0 {
					t.Fatalf("in-flight work should still produce its outcome")
				}
				return
			}
			n++
		case <-deadline:
			t.Fatalf("outcome channel never closed after cancel")
		}
	}
}
