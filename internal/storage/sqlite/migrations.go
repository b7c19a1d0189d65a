package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: periods must be created before receipts and participants due to
// foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS periods (
    space_id TEXT NOT NULL,
    period_id TEXT NOT NULL,
    week_start TEXT NOT NULL,
    week_end TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    total_amount INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    settled_at INTEGER,
    PRIMARY KEY (space_id, period_id)
);

CREATE TABLE IF NOT EXISTS participants (
    space_id TEXT NOT NULL,
    period_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    total_paid INTEGER NOT NULL DEFAULT 0,
    total_owed INTEGER NOT NULL DEFAULT 0,
    balance INTEGER NOT NULL DEFAULT 0,
    payment_confirmed INTEGER NOT NULL DEFAULT 0,
    transfer_completed INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (space_id, period_id, user_id),
    FOREIGN KEY (space_id, period_id) REFERENCES periods(space_id, period_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS receipts (
    space_id TEXT NOT NULL,
    period_id TEXT NOT NULL,
    receipt_id TEXT NOT NULL,
    submitted_by TEXT NOT NULL,
    submitted_by_name TEXT NOT NULL DEFAULT '',
    paid_by TEXT NOT NULL,
    paid_by_name TEXT NOT NULL DEFAULT '',
    belongs_to_date TEXT NOT NULL DEFAULT '',
    memo TEXT NOT NULL DEFAULT '',
    image_ref TEXT NOT NULL DEFAULT '',
    total_amount INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (space_id, period_id, receipt_id),
    FOREIGN KEY (space_id, period_id) REFERENCES periods(space_id, period_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS receipt_items (
    space_id TEXT NOT NULL,
    period_id TEXT NOT NULL,
    receipt_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    item_name TEXT NOT NULL,
    amount INTEGER NOT NULL,
    per_person INTEGER NOT NULL,
    PRIMARY KEY (space_id, period_id, receipt_id, seq),
    FOREIGN KEY (space_id, period_id, receipt_id) REFERENCES receipts(space_id, period_id, receipt_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS item_splits (
    space_id TEXT NOT NULL,
    period_id TEXT NOT NULL,
    receipt_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (space_id, period_id, receipt_id, seq, user_id),
    FOREIGN KEY (space_id, period_id, receipt_id, seq) REFERENCES receipt_items(space_id, period_id, receipt_id, seq) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS members (
    space_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    contact TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (space_id, user_id)
);

CREATE TABLE IF NOT EXISTS settlement_schedules (
    space_id TEXT PRIMARY KEY,
    enabled INTEGER NOT NULL DEFAULT 0,
    frequency TEXT NOT NULL DEFAULT 'weekly',
    weekly_day INTEGER NOT NULL DEFAULT 1,
    monthly_day INTEGER NOT NULL DEFAULT 1,
    yearly_month INTEGER NOT NULL DEFAULT 1,
    yearly_day INTEGER NOT NULL DEFAULT 1,
    close_time TEXT NOT NULL DEFAULT '18:00'
);

CREATE INDEX IF NOT EXISTS idx_receipts_period ON receipts(space_id, period_id);
CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt ON receipt_items(space_id, period_id, receipt_id);
CREATE INDEX IF NOT EXISTS idx_item_splits_item ON item_splits(space_id, period_id, receipt_id, seq);
CREATE INDEX IF NOT EXISTS idx_participants_period ON participants(space_id, period_id);
CREATE INDEX IF NOT EXISTS idx_members_space ON members(space_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
