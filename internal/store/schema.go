package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS payloads (
    resource             TEXT NOT NULL,
    account_id           TEXT NOT NULL,
    query                TEXT NOT NULL DEFAULT '',
    body                 BLOB NOT NULL,
    fetched_at           TEXT NOT NULL,
    PRIMARY KEY (resource, account_id, query)
);

CREATE TABLE IF NOT EXISTS snapshots (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id           TEXT NOT NULL,
    taken_at             TEXT NOT NULL,
    total_spent          REAL NOT NULL,
    monthly_average      REAL NOT NULL,
    spending_ratio       REAL NOT NULL,
    bills_total          REAL NOT NULL,
    upcoming_bills       INTEGER NOT NULL,
    top_category         TEXT,
    top_category_amount  REAL,
    high_predictions     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_categories (
    snapshot_id          INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    category             TEXT NOT NULL,
    amount               REAL NOT NULL,
    PRIMARY KEY (snapshot_id, category)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON snapshots(account_id, taken_at);
`
