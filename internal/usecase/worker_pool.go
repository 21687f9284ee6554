package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ScreenPull/internal/domain/models"
)

// Outcome is the per-symbol result of the screening pipeline. Exactly one of
// Result/Err may be set; both nil means the symbol was screened out.
type Outcome struct {
	Symbol string
	Result *models.StockResult
	Err    error
}

// SymbolFunc runs the fetch→analyze→evaluate pipeline for one symbol.
type SymbolFunc func(ctx context.Context, symbol string) (*models.StockResult, error)

// WorkerPool fans per-symbol work onto a bounded set of goroutines.
//
// Cancellation is cooperative: the context is checked before each symbol is
// dispatched, never mid-fetch. In-flight work drains before the outcome
// channel closes. A failure inside fn (error or panic) is captured as an
// Outcome and never aborts sibling work.
type WorkerPool struct {
	concurrency int
	pace        time.Duration
}

// NewWorkerPool creates a pool with the given concurrency limit and an
// optional inter-submission pacing delay.
func NewWorkerPool(concurrency int, pace time.Duration) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &WorkerPool{concurrency: concurrency, pace: pace}
}

// Run dispatches fn for every symbol and streams outcomes in completion
// order. The channel is closed once all launched work has finished; symbols
// never dispatched because of cancellation produce no outcome.
func (p *WorkerPool) Run(ctx context.Context, symbols []string, fn SymbolFunc) <-chan Outcome {
	out := make(chan Outcome, len(symbols))

	go func() {
		defer close(out)

		sem := make(chan struct{}, p.concurrency)
		var wg sync.WaitGroup

	dispatch:
		for _, symbol := range symbols {
			select {
			case <-ctx.Done():
				break dispatch
			case sem <- struct{}{}:
			}

			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				defer func() { <-sem }()
				out <- p.screen(ctx, symbol, fn)
			}(symbol)

			if p.pace > 0 {
				select {
				case <-ctx.Done():
					break dispatch
				case <-time.After(p.pace):
				}
			}
		}

		wg.Wait()
	}()

	return out
}

// screen runs fn with panic isolation.
func (p *WorkerPool) screen(ctx context.Context, symbol string, fn SymbolFunc) (oc Outcome) {
	oc.Symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			oc.Result = nil
			oc.Err = fmt.Errorf("screen %s: panic: %v", symbol, r)
		}
	}()
	oc.Result, oc.Err = fn(ctx, symbol)
	return oc
}
