package observability

// Schema is the DDL for the request log database. Idempotent; run it at
// startup via dbopen.WithSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS http_request_logs (
    request_id   TEXT PRIMARY KEY,
    method       TEXT NOT NULL,
    path         TEXT NOT NULL,
    status       INTEGER NOT NULL,
    duration_ms  INTEGER NOT NULL,
    remote_addr  TEXT NOT NULL DEFAULT '',
    user_agent   TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_http_request_logs_created
    ON http_request_logs (created_at);
CREATE INDEX IF NOT EXISTS idx_http_request_logs_path
    ON http_request_logs (path, created_at);
`
