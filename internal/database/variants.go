package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

func (s *SQLiteDatabase) RegisterVariant(v *model.NewVariant) (int64, bool, error) {
	ctx := context.Background()
	now := s.now().Time

	var id int64
	var created bool
	err := s.inTx(func(qtx *sqlc.Queries) error {
		var err error
		id, created, err = registerVariant(ctx, qtx, v, now)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}

// registerVariant inserts v unless the manual already has a variant of that
// kind. A primary insert first clears the flag on the manual's other
// variants.
func registerVariant(ctx context.Context, qtx *sqlc.Queries, v *model.NewVariant, now time.Time) (int64, bool, error) {
	existing, err := qtx.GetVariantByKind(ctx, sqlc.GetVariantByKindParams{
		ManualID:    v.ManualID,
		VariantType: string(v.Kind),
	})
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("checking for existing variant: %w", err)
	}

	if v.IsPrimary {
		if err := qtx.ClearPrimaryVariants(ctx, v.ManualID); err != nil {
			return 0, false, fmt.Errorf("clearing primary variant: %w", err)
		}
	}

	id, err := qtx.InsertVariant(ctx, sqlc.InsertVariantParams{
		ManualID:    v.ManualID,
		VariantType: string(v.Kind),
		FilePath:    v.File.Path,
		FileSha1:    v.File.SHA1,
		FileMd5:     v.File.MD5,
		FileSize:    v.File.Size,
		IsPrimary:   v.IsPrimary,
		CreatedAt:   now,
	})
	if err != nil {
		return 0, false, fmt.Errorf("inserting %s variant: %w", v.Kind, err)
	}
	return id, true, nil
}

// putVariant records file as the manual's variant of kind, replacing the
// file of an existing variant of that kind. Primary status is left alone.
func putVariant(ctx context.Context, qtx *sqlc.Queries, manualID int64, kind model.VariantKind, file model.FileRecord, now time.Time) error {
	n, err := qtx.UpdateVariantFile(ctx, sqlc.UpdateVariantFileParams{
		FilePath:    file.Path,
		FileSha1:    file.SHA1,
		FileMd5:     file.MD5,
		FileSize:    file.Size,
		ManualID:    manualID,
		VariantType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("updating %s variant: %w", kind, err)
	}
	if n > 0 {
		return nil
	}
	_, _, err = registerVariant(ctx, qtx, &model.NewVariant{ManualID: manualID, Kind: kind, File: file}, now)
	return err
}

// setPrimary makes kind the manual's only primary variant. It returns
// errNoVariant when the manual has no variant of that kind.
func setPrimary(ctx context.Context, qtx *sqlc.Queries, manualID int64, kind model.VariantKind) error {
	if err := qtx.ClearPrimaryVariants(ctx, manualID); err != nil {
		return fmt.Errorf("clearing primary variant: %w", err)
	}
	n, err := qtx.SetPrimaryVariant(ctx, sqlc.SetPrimaryVariantParams{
		ManualID:    manualID,
		VariantType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("setting primary variant: %w", err)
	}
	if n == 0 {
		return errNoVariant
	}
	return nil
}

var errNoVariant = errors.New("no variant of that kind")

func (s *SQLiteDatabase) SetPrimaryVariant(manualID int64, kind model.VariantKind) (bool, error) {
	ctx := context.Background()

	found := false
	err := s.inTx(func(qtx *sqlc.Queries) error {
		_, err := qtx.GetVariantByKind(ctx, sqlc.GetVariantByKindParams{
			ManualID:    manualID,
			VariantType: string(kind),
		})
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("finding variant: %w", err)
		}

		if err := setPrimary(ctx, qtx, manualID, kind); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *SQLiteDatabase) ListVariants(manualID int64) ([]*sqlc.FileVariant, error) {
	rows, err := s.queries.ListVariantsByManual(context.Background(), manualID)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	return variantPtrs(rows), nil
}

func (s *SQLiteDatabase) PrimaryVariant(manualID int64) (*sqlc.FileVariant, error) {
	v, err := s.queries.GetPrimaryVariant(context.Background(), manualID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding primary variant: %w", err)
	}
	return &v, nil
}

func (s *SQLiteDatabase) VariantByKind(manualID int64, kind model.VariantKind) (*sqlc.FileVariant, error) {
	v, err := s.queries.GetVariantByKind(context.Background(), sqlc.GetVariantByKindParams{
		ManualID:    manualID,
		VariantType: string(kind),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding %s variant: %w", kind, err)
	}
	return &v, nil
}

func (s *SQLiteDatabase) FindVariantsByDigest(sha1 string) ([]*sqlc.FileVariant, error) {
	rows, err := s.queries.ListVariantsBySha1(context.Background(), sha1)
	if err != nil {
		return nil, fmt.Errorf("finding variants by digest: %w", err)
	}
	return variantPtrs(rows), nil
}

// ResolvePrimaryFile is the one place that knows about manuals recorded
// before variants existed: the primary variant wins, then the legacy
// file_path columns, then nothing.
func (s *SQLiteDatabase) ResolvePrimaryFile(manualID int64) (*model.ResolvedFile, error) {
	v, err := s.PrimaryVariant(manualID)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return &model.ResolvedFile{
			Path:        v.FilePath,
			SHA1:        v.FileSha1,
			MD5:         v.FileMd5,
			Size:        v.FileSize,
			VariantType: model.VariantKind(v.VariantType),
		}, nil
	}

	m, err := s.FindManualByID(manualID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.FilePath.Valid || m.FilePath.String == "" {
		return nil, nil
	}
	return &model.ResolvedFile{
		Path:   m.FilePath.String,
		SHA1:   m.FileSha1.String,
		MD5:    m.FileMd5.String,
		Size:   m.FileSize.Int64,
		Legacy: true,
	}, nil
}

// BackfillVariants gives every downloaded manual that has a file path but no
// variants a single primary variant built from its legacy columns. It is
// "stripped" when the recorded original digest differs from the final one,
// "original" otherwise. Rows missing a digest or size are skipped. Only
// manuals with zero variants are touched, so reruns do nothing.
func (s *SQLiteDatabase) BackfillVariants() (int, error) {
	manuals, err := s.queries.ListManualsWithoutVariants(context.Background())
	if err != nil {
		return 0, fmt.Errorf("listing manuals without variants: %w", err)
	}

	created := 0
	for _, m := range manuals {
		if m.FileSha1.String == "" || m.FileMd5.String == "" || !m.FileSize.Valid {
			continue
		}

		kind := model.VariantOriginal
		if m.OriginalFileSha1.String != "" && m.OriginalFileSha1.String != m.FileSha1.String {
			kind = model.VariantStripped
		}

		_, ok, err := s.RegisterVariant(&model.NewVariant{
			ManualID: m.ID,
			Kind:     kind,
			File: model.FileRecord{
				Path: m.FilePath.String,
				SHA1: m.FileSha1.String,
				MD5:  m.FileMd5.String,
				Size: m.FileSize.Int64,
			},
			IsPrimary: true,
		})
		if err != nil {
			return created, fmt.Errorf("backfilling manual %d: %w", m.ID, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func variantPtrs(rows []sqlc.FileVariant) []*sqlc.FileVariant {
	result := make([]*sqlc.FileVariant, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result
}
