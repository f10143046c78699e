package database

import (
	"context"
	"fmt"

	"salli-go/internal/database/sqlc"
)

// Run tracking

func (s *SQLiteDatabase) CreateRun(operation string, parameters string) (*sqlc.Run, error) {
	run, err := s.queries.InsertRun(context.Background(), sqlc.InsertRunParams{
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  s.now().Time,
	})
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteDatabase) FinishRun(id int64, status string) error {
	err := s.queries.FinishRun(context.Background(), sqlc.FinishRunParams{
		FinishedAt: s.now(),
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListRuns(limit int) ([]*sqlc.Run, error) {
	runs, err := s.queries.ListRuns(context.Background(), sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	result := make([]*sqlc.Run, len(runs))
	for i := range runs {
		result[i] = &runs[i]
	}
	return result, nil
}

func (s *SQLiteDatabase) MaxRunID() (int64, error) {
	id, err := s.queries.GetMaxRunID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("getting max run id: %w", err)
	}
	return id, nil
}
