package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Audit records table
CREATE TABLE IF NOT EXISTS audit (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    time TIMESTAMP NOT NULL,

    method TEXT NOT NULL,
    path TEXT NOT NULL,
    route TEXT NOT NULL,
    query TEXT,

    status INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,

    client_ip TEXT,
    user_agent TEXT,

    error TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_time ON audit(time);
CREATE INDEX IF NOT EXISTS idx_audit_route ON audit(route);
CREATE INDEX IF NOT EXISTS idx_audit_status ON audit(status);
CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit(request_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
