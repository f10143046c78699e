package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// Category lists are stored as JSON arrays in text columns.

func (s *SQLiteDatabase) AddBrand(b *model.NewBrand) (int64, bool, error) {
	if b.Slug == "" {
		return 0, false, fmt.Errorf("brand slug is required")
	}
	ctx := context.Background()

	categories, err := encodeList(b.Categories)
	if err != nil {
		return 0, false, err
	}
	categoryURLs, err := encodeList(b.CategoryURLs)
	if err != nil {
		return 0, false, err
	}
	all, err := encodeList(b.AllCategories)
	if err != nil {
		return 0, false, err
	}

	res, err := s.queries.InsertBrand(ctx, sqlc.InsertBrandParams{
		Name:          b.Name,
		Slug:          b.Slug,
		BrandUrl:      nullString(b.BrandURL),
		Categories:    categories,
		CategoryUrls:  categoryURLs,
		AllCategories: all,
		CreatedAt:     s.now().Time,
	})
	if err != nil {
		return 0, false, fmt.Errorf("inserting brand: %w", err)
	}

	id, created, err := insertedID(res)
	if err != nil {
		return 0, false, fmt.Errorf("inserting brand: %w", err)
	}
	if created {
		return id, true, nil
	}

	existing, err := s.queries.GetBrandBySlug(ctx, b.Slug)
	if err != nil {
		return 0, false, fmt.Errorf("finding existing brand: %w", err)
	}
	return existing.ID, false, nil
}

func (s *SQLiteDatabase) FindBrandBySlug(slug string) (*sqlc.Brand, error) {
	b, err := s.queries.GetBrandBySlug(context.Background(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding brand by slug: %w", err)
	}
	return &b, nil
}

func (s *SQLiteDatabase) ListBrands(indexed *bool) ([]*sqlc.Brand, error) {
	ctx := context.Background()

	var rows []sqlc.Brand
	var err error
	if indexed == nil {
		rows, err = s.queries.ListBrands(ctx)
	} else {
		rows, err = s.queries.ListBrandsByIndexed(ctx, *indexed)
	}
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}

	result := make([]*sqlc.Brand, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

func (s *SQLiteDatabase) MarkBrandIndexed(id int64) error {
	n, err := s.queries.MarkBrandIndexed(context.Background(), id)
	if err != nil {
		return fmt.Errorf("marking brand indexed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("brand %d not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) ClearBrands() (int64, error) {
	n, err := s.queries.DeleteAllBrands(context.Background())
	if err != nil {
		return 0, fmt.Errorf("clearing brands: %w", err)
	}
	return n, nil
}

// DecodeList parses a JSON list column. Malformed values decode as empty.
func DecodeList(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(data), nil
}
