package database

import (
	"database/sql"
	"fmt"
)

// Schema bootstrap. Records live at content-derived keys: slots under their
// (asset_id, scheduled_date) pair, auctions under their auction_id, so every
// lookup is a primary-key fetch.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'user'
	)`,
	`CREATE TABLE IF NOT EXISTS slots (
		asset_id TEXT NOT NULL,
		scheduled_date TIMESTAMPTZ NOT NULL,
		owner_id TEXT NOT NULL,
		reserve_price BIGINT NOT NULL,
		escrowed BOOLEAN NOT NULL DEFAULT FALSE,
		consumed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (asset_id, scheduled_date)
	)`,
	`CREATE TABLE IF NOT EXISTS auctions (
		auction_id BIGINT PRIMARY KEY,
		asset_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		reserve_price BIGINT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		current_bid BIGINT NOT NULL DEFAULT 0,
		current_bidder_id TEXT,
		fee_bps INT NOT NULL,
		settled BOOLEAN NOT NULL DEFAULT FALSE,
		reserve_met BOOLEAN NOT NULL DEFAULT FALSE,
		bidders_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bids (
		id TEXT PRIMARY KEY,
		auction_id BIGINT NOT NULL REFERENCES auctions(auction_id),
		user_id TEXT NOT NULL,
		amount BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS params (
		id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		admin_id TEXT NOT NULL,
		treasury_id TEXT NOT NULL,
		default_fee_bps INT NOT NULL,
		bid_increment_bps INT NOT NULL,
		time_buffer_secs BIGINT NOT NULL,
		min_reserve BIGINT NOT NULL,
		loyalty_token TEXT,
		discount_tiers JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		asset_id TEXT PRIMARY KEY,
		holder_id TEXT NOT NULL
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
