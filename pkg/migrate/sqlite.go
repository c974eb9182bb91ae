package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteSchema mirrors the goose migrations for the sqlite driver used in local
// runs and tests. Money columns are TEXT so decimals round-trip exactly.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		supplier_org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category_id TEXT,
		base_price TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS supplier_state_conditions (
		id TEXT PRIMARY KEY,
		supplier_org_id TEXT NOT NULL,
		state TEXT NOT NULL,
		cashback_percent TEXT NOT NULL DEFAULT '0',
		payment_term_days INTEGER NOT NULL DEFAULT 0,
		unit_price_adjustment TEXT NOT NULL DEFAULT '0',
		effective_from DATETIME NOT NULL,
		effective_until DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS payment_conditions (
		id TEXT PRIMARY KEY,
		supplier_org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		payment_term_days INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		supplier_org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		scope TEXT NOT NULL,
		category_id TEXT,
		product_ids TEXT NOT NULL DEFAULT '{}',
		min_order_total TEXT,
		min_quantity INTEGER,
		cashback_percent TEXT,
		gift_product_id TEXT,
		starts_at DATETIME NOT NULL,
		ends_at DATETIME,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		buyer_org_id TEXT NOT NULL,
		supplier_org_id TEXT NOT NULL,
		status TEXT NOT NULL,
		placed_at DATETIME,
		shipping_address_id TEXT NOT NULL,
		buyer_state TEXT NOT NULL,
		payment_method TEXT,
		subtotal_amount TEXT NOT NULL,
		shipping_cost TEXT NOT NULL,
		adjustments TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		total_cashback TEXT NOT NULL,
		cashback_used TEXT NOT NULL,
		supplier_state_condition_id TEXT,
		payment_condition_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		idempotency_key TEXT,
		request_hash TEXT,
		created_by TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_buyer_idempotency
		ON orders (buyer_org_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		category_id TEXT,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price TEXT NOT NULL,
		adjusted_unit_price TEXT NOT NULL,
		line_total TEXT NOT NULL,
		cashback_rate TEXT NOT NULL,
		applied_cashback_amount TEXT NOT NULL,
		price_clamped BOOLEAN NOT NULL DEFAULT 0,
		is_gift BOOLEAN NOT NULL DEFAULT 0,
		gift_campaign_id TEXT,
		UNIQUE (order_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS order_status_history (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		previous_status TEXT,
		new_status TEXT NOT NULL,
		actor_user_id TEXT NOT NULL,
		actor_org_id TEXT NOT NULL,
		actor_org_type TEXT NOT NULL,
		note TEXT,
		idempotency_key TEXT,
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_order_status_history_idempotency
		ON order_status_history (order_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS cashback_wallets (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL UNIQUE,
		available_balance TEXT NOT NULL,
		total_earned TEXT NOT NULL,
		total_used TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS cashback_transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL REFERENCES cashback_wallets(id),
		order_id TEXT,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		reference_id TEXT,
		reference_type TEXT,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_cashback_transactions_order_type
		ON cashback_transactions (order_id, type) WHERE order_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
}

// ApplySQLiteSchema creates every table on a sqlite database. It is idempotent.
func ApplySQLiteSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
