package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VolScan/internal/domain/models"
	pkgch "VolScan/pkg/clickhouse"
	applogger "VolScan/pkg/logger"
)

var barSchema = []string{
	`CREATE DATABASE IF NOT EXISTS volscan`,
	`CREATE TABLE IF NOT EXISTS volscan.daily_bars (
        symbol  LowCardinality(String),
        day     Date,
        open    Float64,
        high    Float64,
        low     Float64,
        close   Float64,
        vol     Int64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, day)`,
}

// CHBarStore implements BarStore backed by ClickHouse. Daily bars are
// append-only; re-inserting the same (symbol, day) is deduplicated by
// the ReplacingMergeTree engine.
type CHBarStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, barSchema)
}

func (s *CHBarStore) StoreBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bar insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO volscan.daily_bars (symbol, day, open, high, low, close, vol) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare bar insert: %w", err)
	}
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			_ = tx.Rollback()
			if s.l != nil {
				s.l.Error("clickhouse store_bars exec error",
					applogger.String("symbol", b.Symbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bar insert: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse store_bars ok",
			applogger.String("symbol", bars[0].Symbol),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHBarStore) BarsSince(ctx context.Context, symbol string, after time.Time) ([]models.PriceBar, error) {
	start := time.Now()
	const q = `
        SELECT symbol, day, open, high, low, close, vol
        FROM volscan.daily_bars FINAL
        WHERE symbol = ? AND day > ?
        ORDER BY day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, after)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse bars_since query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("bars since: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceBar, 0, 256)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse bars_since ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHBarStore) Close() error {
	return s.client.Close()
}
