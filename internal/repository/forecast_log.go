package repository

import (
	"context"
	"database/sql"
	"fmt"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/logger"
)

var forecastLogSchema = []string{
	`CREATE TABLE IF NOT EXISTS forecast_log (
		coin        LowCardinality(String),
		issued_at   DateTime64(3, 'UTC'),
		step        UInt16,
		target_date Date,
		price       Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(issued_at)
	ORDER BY (coin, issued_at, step)`,
}

// ForecastLog persists every issued forecast to ClickHouse, one row per
// predicted step.
type ForecastLog struct {
	client *clickhouse.Client
	log    *logger.Logger
}

// NewForecastLog creates the log and ensures its table exists.
func NewForecastLog(ctx context.Context, client *clickhouse.Client, log *logger.Logger) (*ForecastLog, error) {
	if err := client.InitSchema(ctx, forecastLogSchema); err != nil {
		return nil, err
	}
	return &ForecastLog{client: client, log: log}, nil
}

// Record writes the forecast's steps in one transaction-batched insert.
func (f *ForecastLog) Record(ctx context.Context, fc *models.Forecast) error {
	if len(fc.Prices) != len(fc.Dates) {
		return fmt.Errorf("forecast log: %d prices vs %d dates", len(fc.Prices), len(fc.Dates))
	}

	tx, err := f.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("forecast log: begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO forecast_log (coin, issued_at, step, target_date, price) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("forecast log: prepare: %w", err)
	}
	defer stmt.Close()

	for i, price := range fc.Prices {
		if _, err := stmt.ExecContext(ctx, fc.Coin, fc.IssuedAt, uint16(i+1), fc.Dates[i], price); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("forecast log: insert step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("forecast log: commit: %w", err)
	}
	return nil
}

// RecentForecasts returns the latest issued forecast steps for a coin, most
// recent issue first.
func (f *ForecastLog) RecentForecasts(ctx context.Context, coin string, limit int) ([]models.Forecast, error) {
	rows, err := f.client.DB().QueryContext(ctx,
		`SELECT issued_at, step, target_date, price
		 FROM forecast_log
		 WHERE coin = ?
		 ORDER BY issued_at DESC, step ASC
		 LIMIT ?`, coin, limit)
	if err != nil {
		return nil, fmt.Errorf("forecast log: query: %w", err)
	}
	defer rows.Close()

	var out []models.Forecast
	var current *models.Forecast
	for rows.Next() {
		var (
			issuedAt   sql.NullTime
			step       uint16
			targetDate string
			price      float64
		)
		if err := rows.Scan(&issuedAt, &step, &targetDate, &price); err != nil {
			return nil, fmt.Errorf("forecast log: scan: %w", err)
		}
		if current == nil || !current.IssuedAt.Equal(issuedAt.Time) {
			out = append(out, models.Forecast{Coin: coin, IssuedAt: issuedAt.Time})
			current = &out[len(out)-1]
		}
		current.Prices = append(current.Prices, price)
		current.Dates = append(current.Dates, targetDate)
		current.Horizon = len(current.Prices)
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (f *ForecastLog) Close() error {
	return f.client.Close()
}
