package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Escrow store (SQLite).
var Migrations = migrate.NewGroup("escrow")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_escrow_leases",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS escrow_leases (
    id                   TEXT PRIMARY KEY,
    tenant               TEXT NOT NULL DEFAULT '',
    months               INTEGER NOT NULL DEFAULT 0,
    months_paid          INTEGER NOT NULL DEFAULT 0,
    monthly_amount_cents INTEGER NOT NULL DEFAULT 0,
    monthly_currency     TEXT NOT NULL DEFAULT '',
    deposit_cents        INTEGER NOT NULL DEFAULT 0,
    deposit_currency     TEXT NOT NULL DEFAULT '',
    rent_window_ns       INTEGER NOT NULL DEFAULT 0,
    deposit_window_ns    INTEGER NOT NULL DEFAULT 0,
    rent_deadline        TEXT,
    deposit_deadline     TEXT,
    deposit_held         INTEGER NOT NULL DEFAULT 0,
    deposit_paid         INTEGER NOT NULL DEFAULT 0,
    fully_paid           INTEGER NOT NULL DEFAULT 0,
    closed               INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at           TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_escrow_leases_tenant ON escrow_leases (tenant, created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_escrow_leases_open_tenant ON escrow_leases (tenant) WHERE closed = 0;
CREATE INDEX IF NOT EXISTS idx_escrow_leases_rent_deadline ON escrow_leases (rent_deadline) WHERE closed = 0;
CREATE INDEX IF NOT EXISTS idx_escrow_leases_deposit_deadline ON escrow_leases (deposit_deadline) WHERE closed = 0;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS escrow_leases`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_escrow_payments",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS escrow_payments (
    id             TEXT PRIMARY KEY,
    lease_id       TEXT NOT NULL DEFAULT '',
    tenant         TEXT NOT NULL DEFAULT '',
    kind           TEXT NOT NULL DEFAULT '',
    amount         INTEGER NOT NULL DEFAULT 0,
    rate_cents     INTEGER NOT NULL DEFAULT 0,
    rate_currency  TEXT NOT NULL DEFAULT '',
    months_covered INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_escrow_payments_tenant ON escrow_payments (tenant, created_at);
CREATE INDEX IF NOT EXISTS idx_escrow_payments_lease ON escrow_payments (lease_id);
CREATE INDEX IF NOT EXISTS idx_escrow_payments_kind ON escrow_payments (kind);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS escrow_payments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_escrow_ledger",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS escrow_ledger (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    balance INTEGER NOT NULL DEFAULT 0
);

INSERT OR IGNORE INTO escrow_ledger (id, balance) VALUES (1, 0);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS escrow_ledger`)
				return err
			},
		},
	)
}
