package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the synthesis evidence schema.
const Schema = `
-- Synthesis records table
CREATE TABLE IF NOT EXISTS synthesis_records (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Timestamps
    request_time TIMESTAMP NOT NULL,
    selection_time TIMESTAMP,
    validation_time TIMESTAMP,
    recorded_time TIMESTAMP NOT NULL,

    -- Selection decision
    template_id TEXT NOT NULL,
    template_category TEXT NOT NULL,
    strategy TEXT NOT NULL,
    eligible_count INTEGER,

    -- Request content
    principle_hash TEXT NOT NULL,
    principle_excerpt TEXT,
    target_format TEXT,
    safety_level TEXT,

    -- Generated rule
    rule_hash TEXT,
    rule_excerpt TEXT,

    -- Consensus breakdown (maps stored as JSON)
    validator_scores TEXT,
    validator_failures TEXT,
    weighted_score REAL,
    agreement_factor REAL,
    consensus BOOLEAN,

    -- Feedback loop
    reward REAL,
    reward_recorded BOOLEAN,

    -- Latency (milliseconds)
    generation_latency INTEGER,
    validation_latency INTEGER,

    -- Error info
    error TEXT,
    error_type TEXT
);

-- Indexes for common query patterns
CREATE INDEX IF NOT EXISTS idx_synthesis_request_time ON synthesis_records(request_time);
CREATE INDEX IF NOT EXISTS idx_synthesis_template_id ON synthesis_records(template_id);
CREATE INDEX IF NOT EXISTS idx_synthesis_category ON synthesis_records(template_category);
CREATE INDEX IF NOT EXISTS idx_synthesis_consensus ON synthesis_records(consensus);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`
