package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one committed mutation.
type AuditEntry struct {
	ID        string                 `json:"id"`
	CaseID    string                 `json:"case_id,omitempty"`
	Action    string                 `json:"action"` // "case_created", "status_changed", "reference_added", etc.
	Actor     string                 `json:"actor"`
	Details   map[string]interface{} `json:"details"`
	Metadata  map[string]string      `json:"metadata,omitempty"` // revision, slot
	Timestamp time.Time              `json:"timestamp"`
	CreatedAt time.Time              `json:"created_at"`
}

func (s *Store) setupAuditTables() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			actor TEXT NOT NULL,
			details TEXT NOT NULL,
			metadata TEXT,
			timestamp INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_audit_case_id ON audit_entries(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_entries(action)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute audit migration: %w", err)
		}
	}
	return nil
}

// AddAuditEntry adds an audit entry to the database
func (s *Store) AddAuditEntry(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = "audit_" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.CreatedAt = time.Now()

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	var metadataJSON []byte
	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	query := `INSERT INTO audit_entries (
		id, case_id, action, actor, details, metadata, timestamp, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID, entry.CaseID, entry.Action, entry.Actor,
		string(detailsJSON), string(metadataJSON), entry.Timestamp.UnixMilli(), entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// GetAuditEntries returns the newest entries first. An empty caseID returns
// entries for every case, reference actions included.
func (s *Store) GetAuditEntries(ctx context.Context, caseID string, limit int) ([]AuditEntry, error) {
	query := `SELECT id, case_id, action, actor, details, metadata, timestamp, created_at
		FROM audit_entries`
	var args []interface{}
	if caseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, caseID)
	}
	query += ` ORDER BY timestamp DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var metadataJSON *string
		var detailsJSON string
		var timestamp, createdAt int64

		err := rows.Scan(&entry.ID, &entry.CaseID, &entry.Action,
			&entry.Actor, &detailsJSON, &metadataJSON, &timestamp, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Timestamp = time.UnixMilli(timestamp)
		entry.CreatedAt = time.UnixMilli(createdAt)

		if err := json.Unmarshal([]byte(detailsJSON), &entry.Details); err != nil {
			entry.Details = map[string]interface{}{"raw": detailsJSON}
		}
		if metadataJSON != nil && *metadataJSON != "" {
			if err := json.Unmarshal([]byte(*metadataJSON), &entry.Metadata); err != nil {
				entry.Metadata = map[string]string{"raw": *metadataJSON}
			}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CaseAction is one committed change as the session reports it.
type CaseAction struct {
	CaseID   string
	Action   string
	Actor    string
	Summary  string
	Revision uint64
	Slot     string
	At       time.Time
}

// LogCaseAction records a committed change to a case or reference list.
func (s *Store) LogCaseAction(ctx context.Context, a CaseAction) error {
	return s.AddAuditEntry(ctx, AuditEntry{
		CaseID:  a.CaseID,
		Action:  a.Action,
		Actor:   a.Actor,
		Details: map[string]interface{}{"summary": a.Summary},
		Metadata: map[string]string{
			"revision": strconv.FormatUint(a.Revision, 10),
			"slot":     a.Slot,
		},
		Timestamp: a.At,
	})
}
