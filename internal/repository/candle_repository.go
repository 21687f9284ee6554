package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ScreenPull/internal/domain/models"
	pkgch "ScreenPull/pkg/clickhouse"
)

const candleTable = "daily_candles"

var candleSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_candles (
		symbol LowCardinality(String),
		day    Date,
		open   Float64,
		high   Float64,
		low    Float64,
		close  Float64,
		volume Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, day)`,
}

// CHCandleStore archives daily candles in ClickHouse. The screener works
// fine without it; the archive feeds offline research over past runs.
type CHCandleStore struct {
	client *pkgch.Client
}

// NewCHCandleStore creates the archive and ensures its schema.
func NewCHCandleStore(ctx context.Context, client *pkgch.Client) (*CHCandleStore, error) {
	if err := client.InitSchema(ctx, candleSchema); err != nil {
		return nil, err
	}
	return &CHCandleStore{client: client}, nil
}

func (s *CHCandleStore) Store(ctx context.Context, series *models.CandleSeries) error {
	if series == nil || series.Len() == 0 {
		return nil
	}

	values := make([]string, 0, series.Len())
	args := make([]interface{}, 0, series.Len()*7)
	for _, c := range series.Candles {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, series.Symbol, c.Time, c.Open, c.High, c.Low, c.Close, c.Volume)
	}

	q := fmt.Sprintf("INSERT INTO %s (symbol, day, open, high, low, close, volume) VALUES %s",
		candleTable, strings.Join(values, ","))
	if _, err := s.client.DB().ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert candles %s: %w", series.Symbol, err)
	}
	return nil
}

func (s *CHCandleStore) Load(ctx context.Context, symbol string, from time.Time) (*models.CandleSeries, error) {
	q := fmt.Sprintf(`SELECT day, open, high, low, close, volume
		FROM %s FINAL
		WHERE symbol = ? AND day >= ?
		ORDER BY day`, candleTable)

	rows, err := s.client.DB().QueryContext(ctx, q, symbol, from)
	if err != nil {
		return nil, fmt.Errorf("query candles %s: %w", symbol, err)
	}
	defer rows.Close()

	series := &models.CandleSeries{Symbol: symbol}
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		series.Candles = append(series.Candles, c)
	}
	return series, rows.Err()
}

func (s *CHCandleStore) Close() error {
	return nil // underlying client is shared and closed by the app
}
