package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"acgs-hq/quorum/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/evidence.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a synthesis record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.SynthesisRecord) error {
	scores, _ := json.Marshal(record.ValidatorScores)
	failures, _ := json.Marshal(record.ValidatorFailures)

	query := `
		INSERT INTO synthesis_records (
			id, request_id,
			request_time, selection_time, validation_time, recorded_time,
			template_id, template_category, strategy, eligible_count,
			principle_hash, principle_excerpt, target_format, safety_level,
			rule_hash, rule_excerpt,
			validator_scores, validator_failures, weighted_score, agreement_factor, consensus,
			reward, reward_recorded,
			generation_latency, validation_latency,
			error, error_type
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	var errorVal, errorTypeVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}
	if record.ErrorType != "" {
		errorTypeVal = record.ErrorType
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID,
		record.RequestTime, record.SelectionTime, record.ValidationTime, record.RecordedTime,
		record.TemplateID, record.TemplateCategory, record.Strategy, record.EligibleCount,
		record.PrincipleHash, record.PrincipleExcerpt, record.TargetFormat, record.SafetyLevel,
		record.RuleHash, record.RuleExcerpt,
		string(scores), string(failures), record.WeightedScore, record.AgreementFactor, record.Consensus,
		record.Reward, record.RewardRecorded,
		record.GenerationLatency.Milliseconds(), record.ValidationLatency.Milliseconds(),
		errorVal, errorTypeVal,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves records matching the query filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.SynthesisRecord, error) {
	if query == nil {
		query = &evidence.Query{}
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT
		id, request_id,
		request_time, selection_time, validation_time, recorded_time,
		template_id, template_category, strategy, eligible_count,
		principle_hash, principle_excerpt, target_format, safety_level,
		rule_hash, rule_excerpt,
		validator_scores, validator_failures, weighted_score, agreement_factor, consensus,
		reward, reward_recorded,
		generation_latency, validation_latency,
		error, error_type
	FROM synthesis_records`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY request_time DESC"
	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var results []*evidence.SynthesisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "iterate", err)
	}

	return results, nil
}

// Count returns the total number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM synthesis_records").Scan(&count)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan deletes records with request_time before the cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM synthesis_records WHERE request_time < ?", cutoff)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete_older_than", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "rows_affected", err)
	}
	return deleted, nil
}

// DeleteOldest deletes the oldest records until at most keep remain.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM synthesis_records WHERE id IN (
			SELECT id FROM synthesis_records
			ORDER BY request_time DESC
			LIMIT -1 OFFSET ?
		)`, keep)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete_oldest", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "rows_affected", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause converts query filters into a WHERE clause and args.
func buildWhereClause(query *evidence.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "request_time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "request_time < ?")
		args = append(args, *query.EndTime)
	}
	if query.TemplateID != "" {
		conditions = append(conditions, "template_id = ?")
		args = append(args, query.TemplateID)
	}
	if query.Category != "" {
		conditions = append(conditions, "template_category = ?")
		args = append(args, query.Category)
	}
	if query.Consensus != nil {
		conditions = append(conditions, "consensus = ?")
		args = append(args, *query.Consensus)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRecord reads one row into a SynthesisRecord.
func scanRecord(rows *sql.Rows) (*evidence.SynthesisRecord, error) {
	var record evidence.SynthesisRecord
	var scores, failures string
	var genLatencyMs, valLatencyMs int64
	var errorVal, errorTypeVal sql.NullString

	err := rows.Scan(
		&record.ID, &record.RequestID,
		&record.RequestTime, &record.SelectionTime, &record.ValidationTime, &record.RecordedTime,
		&record.TemplateID, &record.TemplateCategory, &record.Strategy, &record.EligibleCount,
		&record.PrincipleHash, &record.PrincipleExcerpt, &record.TargetFormat, &record.SafetyLevel,
		&record.RuleHash, &record.RuleExcerpt,
		&scores, &failures, &record.WeightedScore, &record.AgreementFactor, &record.Consensus,
		&record.Reward, &record.RewardRecorded,
		&genLatencyMs, &valLatencyMs,
		&errorVal, &errorTypeVal,
	)
	if err != nil {
		return nil, err
	}

	if scores != "" && scores != "null" {
		if err := json.Unmarshal([]byte(scores), &record.ValidatorScores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validator scores: %w", err)
		}
	}
	if failures != "" && failures != "null" {
		if err := json.Unmarshal([]byte(failures), &record.ValidatorFailures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validator failures: %w", err)
		}
	}

	record.GenerationLatency = time.Duration(genLatencyMs) * time.Millisecond
	record.ValidationLatency = time.Duration(valLatencyMs) * time.Millisecond
	record.Error = errorVal.String
	record.ErrorType = errorTypeVal.String

	return &record, nil
}
