package repository

// Schema definitions for the Shrike database.
// Compatible with both SQLite and PostgreSQL.

const schemaScreeningResults = `
CREATE TABLE IF NOT EXISTS screening_results (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    record_id TEXT,
    record_name TEXT NOT NULL,
    status TEXT NOT NULL,
    is_demo_data INTEGER NOT NULL DEFAULT 0,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_screening_results_tenant ON screening_results(tenant_id);
CREATE INDEX IF NOT EXISTS idx_screening_results_status ON screening_results(tenant_id, status);
CREATE INDEX IF NOT EXISTS idx_screening_results_timestamp ON screening_results(tenant_id, timestamp);
`

// schemaScreeningMatches stores one row per watchlist hit. The entry and
// detail columns hold the matched list entry and the score breakdown as
// JSON so the stored result round-trips without a join against list data.
const schemaScreeningMatches = `
CREATE TABLE IF NOT EXISTS screening_matches (
    result_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    tenant_id TEXT NOT NULL,
    match_id TEXT NOT NULL,
    score REAL NOT NULL,
    entry TEXT NOT NULL,
    detail TEXT NOT NULL,
    disposition TEXT NOT NULL,
    tags TEXT,
    PRIMARY KEY (result_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_screening_matches_tenant ON screening_matches(tenant_id);
CREATE INDEX IF NOT EXISTS idx_screening_matches_disposition ON screening_matches(tenant_id, disposition);
`

const schemaPolicyConfigs = `
CREATE TABLE IF NOT EXISTS policy_configs (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    tag TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id, version)
);

CREATE INDEX IF NOT EXISTS idx_policy_configs_tenant ON policy_configs(tenant_id);
CREATE INDEX IF NOT EXISTS idx_policy_configs_enabled ON policy_configs(tenant_id, enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaScreeningResults,
		schemaScreeningMatches,
		schemaPolicyConfigs,
	}
}
