package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/store"
)

// logColumns is the ordered list of columns selected in generation log
// queries. Must match the scan order in scanLog.
const logColumns = `id, run_id, target_date, summary, created_at`

func scanLog(scanner interface{ Scan(dest ...any) error }) (*domain.GenerationLog, error) {
	var (
		g         domain.GenerationLog
		createdAt string
	)

	if err := scanner.Scan(&g.ID, &g.RunID, &g.TargetDate, &g.Summary, &createdAt); err != nil {
		return nil, err
	}

	var err error
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGenerationLog persists one batch run summary.
// Returns store.ErrAlreadyExists if the run ID was already recorded.
func (s *Store) CreateGenerationLog(ctx context.Context, g *domain.GenerationLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_logs (id, run_id, target_date, summary, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.RunID, g.TargetDate, g.Summary, formatTime(g.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert generation log: %w", err)
	}
	return nil
}

// GetGenerationLog fetches the summary for a run.
// Returns store.ErrNotFound if the run was never recorded.
func (s *Store) GetGenerationLog(ctx context.Context, runID string) (*domain.GenerationLog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM generation_logs WHERE run_id = ?`, runID)

	g, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("generation log %s: %w", runID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get generation log: %w", err)
	}
	return g, nil
}

// RecentGenerationLogs returns the newest runs, most recent first.
func (s *Store) RecentGenerationLogs(ctx context.Context, limit int) ([]*domain.GenerationLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM generation_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list generation logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.GenerationLog
	for rows.Next() {
		g, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		logs = append(logs, g)
	}
	return logs, rows.Err()
}
