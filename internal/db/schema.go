package db

// SchemaVersion is the current database schema version
const SchemaVersion = 1

const keySchemaVersion = "schema_version"

const schema = `
-- Local client settings
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
