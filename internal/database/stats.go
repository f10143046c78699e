package database

import (
	"context"
	"fmt"

	"salli-go/internal/model"
)

func (s *SQLiteDatabase) Stats(source model.Source) (*model.LedgerStats, error) {
	ctx := context.Background()
	src := nullString(string(source))

	totals, err := s.queries.CountManuals(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("counting manuals: %w", err)
	}

	byBrand, err := s.queries.CountManualsByBrand(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("counting manuals by brand: %w", err)
	}

	bySource, err := s.queries.CountManualsBySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting manuals by source: %w", err)
	}

	stats := &model.LedgerStats{
		Total:      totals.Total,
		Downloaded: totals.Downloaded,
		Archived:   totals.Archived,
		Pending:    totals.Pending,
	}
	for _, r := range byBrand {
		stats.ByBrand = append(stats.ByBrand, model.GroupStats{
			Key: r.GroupKey, Total: r.Total, Downloaded: r.Downloaded, Archived: r.Archived,
		})
	}
	for _, r := range bySource {
		stats.BySource = append(stats.BySource, model.GroupStats{
			Key: r.GroupKey, Total: r.Total, Downloaded: r.Downloaded, Archived: r.Archived,
		})
	}
	return stats, nil
}

func (s *SQLiteDatabase) ArchiveCheckStats() (*model.ArchiveCheckStats, error) {
	row, err := s.queries.CountArchiveChecks(context.Background())
	if err != nil {
		return nil, fmt.Errorf("counting archive checks: %w", err)
	}
	return &model.ArchiveCheckStats{
		TotalCheckable:     row.TotalCheckable,
		Archived:           row.Archived,
		CheckedNotArchived: row.CheckedNotArchived,
		NeverChecked:       row.NeverChecked,
	}, nil
}

func (s *SQLiteDatabase) BrandStats() (*model.BrandStats, error) {
	row, err := s.queries.CountBrands(context.Background())
	if err != nil {
		return nil, fmt.Errorf("counting brands: %w", err)
	}
	return &model.BrandStats{
		Total:   row.Total,
		Indexed: row.Indexed,
		Pending: row.Total - row.Indexed,
	}, nil
}

func (s *SQLiteDatabase) VariantStats() (*model.VariantStats, error) {
	ctx := context.Background()

	totals, err := s.queries.VariantTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting variants: %w", err)
	}
	byType, err := s.queries.CountVariantsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting variants by type: %w", err)
	}

	stats := &model.VariantStats{
		Total:     totals.Total,
		TotalSize: totals.TotalSize,
		ByType:    make(map[model.VariantKind]int64, len(byType)),
	}
	for _, r := range byType {
		stats.ByType[model.VariantKind(r.VariantType)] = r.Count
	}
	return stats, nil
}
