package universe

import (
	"context"
	"errors"
	"testing"

	"ScreenPull/internal/domain/models"
	"ScreenPull/internal/domain/repository"
)

func TestResolveKnownIndexes(t *testing.T) {
	p := NewStaticProvider()
	ctx := context.Background()

	n50, err := p.Resolve(ctx, models.IndexNifty50)
	if err != nil {
		t.Fatalf("resolve nifty50: %v", err)
	}
	if len(n50) != 50 {
		t.Fatalf("nifty50 size: got %d want 50", len(n50))
	}
	if n50[0] != "RELIANCE" {
		t.Fatalf("nifty50[0]: got %s", n50[0])
	}

	n100, err := p.Resolve(ctx, models.IndexNifty100)
	if err != nil {
		t.Fatalf("resolve nifty100: %v", err)
	}
	next, _ := p.Resolve(ctx, models.IndexNiftyNext50)
	if len(n100) != len(n50)+len(next) {
		t.Fatalf("nifty100 size: got %d want %d", len(n100), len(n50)+len(next))
	}

	all, err := p.Resolve(ctx, models.IndexAllStocks)
	if err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if len(all) <= len(n100) {
		t.Fatalf("all stocks should be the widest universe: %d", len(all))
	}
}

func TestResolveByStockName(t *testing.T) {
	p := NewStaticProvider()
	symbols, err := p.Resolve(context.Background(), models.IndexByStockName)
	if err != nil || symbols != nil {
		t.Fatalf("by-name resolves to nothing: %v %v", symbols, err)
	}
}

func TestResolveUnknownIndex(t *testing.T) {
	p := NewStaticProvider()
	if _, err := p.Resolve(context.Background(), "99"); !errors.Is(err, repository.ErrUnknownIndex) {
		t.Fatalf("got %v want ErrUnknownIndex", err)
	}
}

func TestResolveReturnsCopies(t *testing.T) {
	p := NewStaticProvider()
	ctx := context.Background()

	first, _ := p.Resolve(ctx, models.IndexNifty50)
	first[0] = "MUTATED"
	second, _ := p.Resolve(ctx, models.IndexNifty50)
	if second[0] != "RELIANCE" {
		t.Fatalf("caller mutation leaked into the embedded list")
	}
}

func TestIndexesMatchResolve(t *testing.T) {
	p := NewStaticProvider()
	ctx := context.Background()

	for _, info := range p.Indexes() {
		symbols, err := p.Resolve(ctx, info.Code)
		if err != nil {
			t.Fatalf("resolve %s: %v", info.Code, err)
		}
		if len(symbols) != info.Count {
			t.Fatalf("%s count: listed %d resolved %d", info.Code, info.Count, len(symbols))
		}
	}
}
