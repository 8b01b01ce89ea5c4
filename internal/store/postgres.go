package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Runs ---

// Run summarizes one pipeline execution.
type Run struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Collected int       `json:"collected"`
	Enriched  int       `json:"enriched"`
	Alerted   int       `json:"alerted"`
	StartedAt time.Time `json:"started_at"`
	Duration  float64   `json:"duration_seconds"`
}

func (s *Store) InsertRun(ctx context.Context, r Run) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO runs (source, collected, enriched, alerted, started_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		r.Source, r.Collected, r.Enriched, r.Alerted, r.StartedAt, r.Duration).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	var r Run
	err := s.pool.QueryRow(ctx, `
		SELECT id, source, collected, enriched, alerted, started_at, duration_seconds
		FROM runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&r.ID, &r.Source, &r.Collected, &r.Enriched, &r.Alerted, &r.StartedAt, &r.Duration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// --- Dividend events ---

// DividendEvent is one enriched announcement persisted for a run.
type DividendEvent struct {
	ID            int64     `json:"id"`
	RunID         int64     `json:"run_id"`
	StockCode     string    `json:"stock_code"`
	Exchange      string    `json:"exchange"`
	ExRightsDate  time.Time `json:"ex_rights_date"`
	Content       string    `json:"content"`
	DividendValue int64     `json:"dividend_value"`
	ClosePrice    int64     `json:"close_price"`
	Percent       int       `json:"percent"`
	Alerted       bool      `json:"alerted"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Store) InsertDividendEvents(ctx context.Context, runID int64, events []DividendEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(`
			INSERT INTO dividend_events
				(run_id, stock_code, exchange, ex_rights_date, content,
				 dividend_value, close_price, percent, alerted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			runID, e.StockCode, e.Exchange, e.ExRightsDate, e.Content,
			e.DividendValue, e.ClosePrice, e.Percent, e.Alerted)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert dividend event: %w", err)
		}
	}
	return nil
}

func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]DividendEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, stock_code, exchange, ex_rights_date, content,
		       dividend_value, close_price, percent, alerted, created_at
		FROM dividend_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []DividendEvent
	for rows.Next() {
		var e DividendEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.StockCode, &e.Exchange, &e.ExRightsDate,
			&e.Content, &e.DividendValue, &e.ClosePrice, &e.Percent, &e.Alerted, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CleanupOldEvents deletes events persisted more than age ago and returns
// the number removed.
func (s *Store) CleanupOldEvents(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM dividend_events WHERE created_at < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(age.Seconds())))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
