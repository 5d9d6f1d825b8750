package statestore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"acgs-hq/quorum/pkg/selection"
)

// SQLiteStore implements Store using SQLite for persistence. It provides
// durable arm posteriors across restarts and is suitable for single-instance
// deployments.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent performance
// and periodic checkpointing to balance write performance with durability.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	// preparedStatements contains pre-compiled SQL statements for performance
	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite arm state store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a new SQLite arm state store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
		DBPath:             dbPath,
		CheckpointInterval: 5 * time.Minute,
		BusyTimeout:        5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig creates a new SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go store.checkpointLoop()

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS arm_states (
		template_id TEXT PRIMARY KEY,
		alpha REAL NOT NULL,
		beta REAL NOT NULL,
		pulls INTEGER NOT NULL,
		reward_sum REAL NOT NULL,
		last_updated INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_arm_last_updated ON arm_states(last_updated);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO arm_states (template_id, alpha, beta, pulls, reward_sum, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (template_id) DO UPDATE SET
			alpha = excluded.alpha,
			beta = excluded.beta,
			pulls = excluded.pulls,
			reward_sum = excluded.reward_sum,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT template_id, alpha, beta, pulls, reward_sum
		FROM arm_states
		ORDER BY template_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM arm_states WHERE template_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// Save upserts the given arm states within a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, states []selection.ArmState) error {
	if len(states) == 0 {
		return nil
	}

	for _, state := range states {
		if state.TemplateID == "" {
			return fmt.Errorf("template id cannot be empty")
		}
		if state.Alpha <= 0 || state.Beta <= 0 {
			return fmt.Errorf("invalid posterior for %q: alpha=%g beta=%g",
				state.TemplateID, state.Alpha, state.Beta)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	stmt := tx.StmtContext(ctx, s.saveStmt)
	for _, state := range states {
		_, err := stmt.ExecContext(ctx,
			state.TemplateID,
			state.Alpha,
			state.Beta,
			state.Pulls,
			state.RewardSum,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to save arm state %q: %w", state.TemplateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Load returns all persisted arm states ordered by template ID.
func (s *SQLiteStore) Load(ctx context.Context) ([]selection.ArmState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.loadStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load arm states: %w", err)
	}
	defer rows.Close()

	var states []selection.ArmState
	for rows.Next() {
		var state selection.ArmState
		if err := rows.Scan(&state.TemplateID, &state.Alpha, &state.Beta, &state.Pulls, &state.RewardSum); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return states, nil
}

// Delete removes the state for a single arm.
func (s *SQLiteStore) Delete(ctx context.Context, templateID string) error {
	if templateID == "" {
		return fmt.Errorf("template id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, templateID); err != nil {
		return fmt.Errorf("failed to delete arm state: %w", err)
	}

	return nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.loadStmt != nil {
			s.loadStmt.Close()
		}
		if s.deleteStmt != nil {
			s.deleteStmt.Close()
		}

		if s.db != nil {
			// Final checkpoint before close
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
