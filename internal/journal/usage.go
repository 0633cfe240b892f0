// ABOUTME: Usage records: insert, per-task listing and aggregated stats
// ABOUTME: Also adapts the journal to the reconcile engine's recorder hook

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurek775/saladin/internal/model"
)

// Record is one journaled telemetry entry.
type Record struct {
	ID         string
	SessionID  string
	TaskID     string
	AgentID    string
	Usage      model.TokenUsage
	RecordedAt time.Time
}

// Filter narrows Stats. Nil fields match everything.
type Filter struct {
	TaskID  *string
	AgentID *string
	Since   *time.Time
	Until   *time.Time
}

// Stats aggregates journaled usage.
type Stats struct {
	TotalInput   int64
	TotalOutput  int64
	TotalTokens  int64
	TotalCostUSD float64
	RequestCount int64
}

// ModelStats is Stats for one model.
type ModelStats struct {
	Model string
	Stats
}

// SaveUsage stores a usage record. Empty ID and zero RecordedAt are filled in.
func (j *Journal) SaveUsage(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}

	query := `
		INSERT INTO token_usage (
			id, session_id, task_id, agent_id, model,
			input_tokens, output_tokens, total_tokens, cost_usd,
			recorded_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := j.db.ExecContext(ctx, query,
		r.ID,
		r.SessionID,
		r.TaskID,
		r.AgentID,
		r.Usage.Model,
		r.Usage.InputTokens,
		r.Usage.OutputTokens,
		r.Usage.TotalTokens,
		r.Usage.EstimatedCostUSD,
		r.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting usage: %w", err)
	}

	j.logger.Debug("saved token usage",
		"id", r.ID,
		"task_id", r.TaskID,
		"agent_id", r.AgentID,
		"total_tokens", r.Usage.TotalTokens,
	)
	return nil
}

// TaskUsage returns a task's records in the order they were recorded.
func (j *Journal) TaskUsage(ctx context.Context, taskID string) ([]*Record, error) {
	query := `
		SELECT id, session_id, task_id, agent_id, model,
		       input_tokens, output_tokens, total_tokens, cost_usd,
		       recorded_at
		FROM token_usage
		WHERE task_id = ?
		ORDER BY recorded_at ASC, rowid ASC
	`
	rows, err := j.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying task usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage rows: %w", err)
	}
	return records, nil
}

func (f Filter) where() (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	if f.TaskID != nil {
		clause += " AND task_id = ?"
		args = append(args, *f.TaskID)
	}
	if f.AgentID != nil {
		clause += " AND agent_id = ?"
		args = append(args, *f.AgentID)
	}
	if f.Since != nil {
		clause += " AND recorded_at >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339))
	}
	if f.Until != nil {
		clause += " AND recorded_at < ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339))
	}
	return clause, args
}

const statsColumns = `
	COALESCE(SUM(input_tokens), 0),
	COALESCE(SUM(output_tokens), 0),
	COALESCE(SUM(total_tokens), 0),
	COALESCE(SUM(cost_usd), 0),
	COUNT(*)
`

// GetUsageStats returns aggregated usage statistics with optional filters.
func (j *Journal) GetUsageStats(ctx context.Context, filter Filter) (*Stats, error) {
	where, args := filter.where()
	query := "SELECT" + statsColumns + "FROM token_usage" + where

	var s Stats
	err := j.db.QueryRowContext(ctx, query, args...).Scan(
		&s.TotalInput,
		&s.TotalOutput,
		&s.TotalTokens,
		&s.TotalCostUSD,
		&s.RequestCount,
	)
	if err != nil {
		return nil, fmt.Errorf("querying usage stats: %w", err)
	}
	return &s, nil
}

// StatsByModel returns filtered stats grouped by model, most expensive first.
func (j *Journal) StatsByModel(ctx context.Context, filter Filter) ([]ModelStats, error) {
	where, args := filter.where()
	query := "SELECT model," + statsColumns + "FROM token_usage" + where +
		" GROUP BY model ORDER BY SUM(cost_usd) DESC, model ASC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying model stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ModelStats
	for rows.Next() {
		var m ModelStats
		if err := rows.Scan(&m.Model, &m.TotalInput, &m.TotalOutput, &m.TotalTokens, &m.TotalCostUSD, &m.RequestCount); err != nil {
			return nil, fmt.Errorf("scanning model stats: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating model stats: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var r Record
	var recordedAt string

	err := rows.Scan(
		&r.ID,
		&r.SessionID,
		&r.TaskID,
		&r.AgentID,
		&r.Usage.Model,
		&r.Usage.InputTokens,
		&r.Usage.OutputTokens,
		&r.Usage.TotalTokens,
		&r.Usage.EstimatedCostUSD,
		&recordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning usage row: %w", err)
	}

	r.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing recorded_at: %w", err)
	}
	r.Usage.Timestamp = model.NewTimestamp(r.RecordedAt)
	return &r, nil
}

// Recorder journals telemetry entries as the engine applies them.
type Recorder struct {
	journal *Journal
	session func() string
	timeout time.Duration
}

// NewRecorder tags every record with the id returned by session at write time.
func NewRecorder(j *Journal, session func() string) *Recorder {
	return &Recorder{journal: j, session: session, timeout: 5 * time.Second}
}

// RecordUsage saves one entry.
func (r *Recorder) RecordUsage(taskID, agentID string, u model.TokenUsage) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	rec := &Record{TaskID: taskID, AgentID: agentID, Usage: u}
	if r.session != nil {
		rec.SessionID = r.session()
	}
	if !u.Timestamp.IsZero() {
		rec.RecordedAt = u.Timestamp.Time
	}
	return r.journal.SaveUsage(ctx, rec)
}
