// Package alerts implements the alert summarization pipeline: grouping
// classified log entries, composite risk scoring, deterministic summary
// generation, and an optional LLM-backed recommendation.
package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// AuditLog persists a local history of alert-summarization digests, so an
// analyst can look back at what was reported for a given time window
// without re-running the pipeline. Adapted from the teacher's SQLite
// wrapper (WAL mode, busy-timeout, foreign keys on); the schema is ours.
type AuditLog struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// OpenAuditLog creates or opens a SQLite-backed audit log at path.
func OpenAuditLog(path string) (*AuditLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging audit log: %w", err)
	}

	a := &AuditLog{db: sqlDB, path: path}
	if err := a.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running audit log migrations: %w", err)
	}
	return a, nil
}

// OpenAuditLogMemory opens an in-memory audit log, useful for tests and for
// operators who don't care about digest history surviving a restart.
func OpenAuditLogMemory() (*AuditLog, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory audit log: %w", err)
	}
	a := &AuditLog{db: sqlDB, path: ":memory:"}
	if err := a.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running audit log migrations: %w", err)
	}
	return a, nil
}

// Close releases the underlying database handle.
func (a *AuditLog) Close() error {
	return a.db.Close()
}

func (a *AuditLog) migrate() error {
	_, err := a.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS alert_digests (
    id TEXT PRIMARY KEY,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    window_start DATETIME NOT NULL,
    window_end DATETIME NOT NULL,
    source_types TEXT NOT NULL DEFAULT '[]',
    alert_count INTEGER NOT NULL DEFAULT 0,
    group_count INTEGER NOT NULL DEFAULT 0,
    risk_score REAL NOT NULL DEFAULT 0,
    risk_level TEXT NOT NULL DEFAULT 'low',
    summary TEXT NOT NULL DEFAULT '',
    recommendation TEXT NOT NULL DEFAULT '',
    groups_json TEXT NOT NULL DEFAULT '[]',
    visualization_path TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_alert_digests_window ON alert_digests(window_start, window_end);
CREATE INDEX IF NOT EXISTS idx_alert_digests_risk ON alert_digests(risk_level);
CREATE INDEX IF NOT EXISTS idx_alert_digests_created ON alert_digests(created_at);
`

// DigestRecord is a single persisted alert-summarization run.
type DigestRecord struct {
	ID                 string
	CreatedAt          time.Time
	WindowStart        time.Time
	WindowEnd          time.Time
	SourceTypes        []string
	AlertCount         int
	GroupCount         int
	RiskScore          float64
	RiskLevel          string
	Summary            string
	Recommendation     string
	Groups             json.RawMessage
	VisualizationPath  string
}

// Record inserts a completed digest into the audit log.
func (a *AuditLog) Record(ctx context.Context, rec DigestRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sourceTypesJSON, err := json.Marshal(rec.SourceTypes)
	if err != nil {
		return fmt.Errorf("marshaling source_types: %w", err)
	}
	groups := rec.Groups
	if groups == nil {
		groups = json.RawMessage("[]")
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO alert_digests
			(id, window_start, window_end, source_types, alert_count, group_count,
			 risk_score, risk_level, summary, recommendation, groups_json, visualization_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.WindowStart, rec.WindowEnd, string(sourceTypesJSON), rec.AlertCount, rec.GroupCount,
		rec.RiskScore, rec.RiskLevel, rec.Summary, rec.Recommendation, string(groups), rec.VisualizationPath,
	)
	if err != nil {
		return fmt.Errorf("inserting alert digest: %w", err)
	}
	return nil
}

// Recent returns the most recent digests, newest first, up to limit.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]DigestRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, window_start, window_end, source_types, alert_count, group_count,
		       risk_score, risk_level, summary, recommendation, groups_json, visualization_path
		FROM alert_digests
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying alert digests: %w", err)
	}
	defer rows.Close()

	var out []DigestRecord
	for rows.Next() {
		var rec DigestRecord
		var sourceTypesJSON, groupsJSON string
		if err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &rec.WindowStart, &rec.WindowEnd, &sourceTypesJSON,
			&rec.AlertCount, &rec.GroupCount, &rec.RiskScore, &rec.RiskLevel,
			&rec.Summary, &rec.Recommendation, &groupsJSON, &rec.VisualizationPath,
		); err != nil {
			return nil, fmt.Errorf("scanning alert digest: %w", err)
		}
		if err := json.Unmarshal([]byte(sourceTypesJSON), &rec.SourceTypes); err != nil {
			rec.SourceTypes = nil
		}
		rec.Groups = json.RawMessage(groupsJSON)
		out = append(out, rec)
	}
	return out, rows.Err()
}
