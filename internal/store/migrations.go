package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id BIGSERIAL PRIMARY KEY,
    source TEXT NOT NULL,
    collected INT NOT NULL DEFAULT 0,
    enriched INT NOT NULL DEFAULT 0,
    alerted INT NOT NULL DEFAULT 0,
    started_at TIMESTAMPTZ NOT NULL,
    duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS dividend_events (
    id BIGSERIAL PRIMARY KEY,
    run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    stock_code TEXT NOT NULL DEFAULT '',
    exchange TEXT NOT NULL DEFAULT '',
    ex_rights_date DATE NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    dividend_value BIGINT NOT NULL DEFAULT 0,
    close_price BIGINT NOT NULL DEFAULT 0,
    percent INT NOT NULL DEFAULT 0,
    alerted BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_dividend_events_created_at
    ON dividend_events (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_dividend_events_stock_code
    ON dividend_events (stock_code);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
