package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id           TEXT PRIMARY KEY,
    project          TEXT NOT NULL,
    root             TEXT,
    model            TEXT,
    content_chars    INTEGER NOT NULL DEFAULT 0,
    estimated_tokens INTEGER NOT NULL DEFAULT 0,
    estimated_cost   REAL NOT NULL DEFAULT 0,
    over_budget      INTEGER NOT NULL DEFAULT 0,
    output_path      TEXT,
    archive_path     TEXT,
    stage            TEXT NOT NULL,
    status           TEXT NOT NULL,
    error            TEXT,
    started_at       TEXT NOT NULL,
    finished_at      TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project);
`
