package database

import (
	"testing"
	"time"

	"salli-go/internal/model"
)

func TestSQLiteDatabase_Stats(t *testing.T) {
	db, clock := newTestDB(t)
	a := addManual(t, db, newManual("Sony", "A", "https://example.com/m/1", model.SourceManualzz, "1"))
	b := addManual(t, db, newManual("Sony", "B", "https://example.com/m/2", model.SourceManualzz, "2"))
	c := addManual(t, db, newManual("Zenith", "C", "https://example.com/m/3", model.SourceManualsLib, "3"))
	addManual(t, db, newManual("Zenith", "D", "https://example.com/m/4", model.SourceManualsLib, ""))

	original := file("aaaa01", 100)
	db.MarkDownloaded(a, &model.DownloadedFiles{Final: file("bbbb01", 60), Original: &original})
	clock.Set(baseTime.Add(time.Hour))
	db.RecordArchiveCheck(b, true, "https://archive.org/details/manualzz-id-2")
	db.RecordArchiveCheck(c, false, "")

	t.Run("all sources", func(t *testing.T) {
		stats, err := db.Stats("")
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Total != 4 || stats.Downloaded != 1 || stats.Archived != 1 || stats.Pending != 2 {
			t.Errorf("Stats() = %+v", stats)
		}
		if len(stats.ByBrand) != 2 || len(stats.BySource) != 2 {
			t.Fatalf("groups = %+v / %+v", stats.ByBrand, stats.BySource)
		}
		if stats.BySource[0].Key != "manualslib" || stats.BySource[0].Total != 2 {
			t.Errorf("BySource[0] = %+v", stats.BySource[0])
		}
	})

	t.Run("one source", func(t *testing.T) {
		stats, err := db.Stats(model.SourceManualzz)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Total != 2 || stats.Pending != 0 {
			t.Errorf("Stats(manualzz) = %+v", stats)
		}
		if len(stats.ByBrand) != 1 || stats.ByBrand[0].Key != "Sony" {
			t.Errorf("ByBrand = %+v", stats.ByBrand)
		}
	})

	t.Run("archive checks", func(t *testing.T) {
		stats, err := db.ArchiveCheckStats()
		if err != nil {
			t.Fatalf("ArchiveCheckStats() error = %v", err)
		}
		want := model.ArchiveCheckStats{TotalCheckable: 3, Archived: 1, CheckedNotArchived: 1, NeverChecked: 1}
		if *stats != want {
			t.Errorf("ArchiveCheckStats() = %+v, want %+v", *stats, want)
		}
	})

	t.Run("variants", func(t *testing.T) {
		stats, err := db.VariantStats()
		if err != nil {
			t.Fatalf("VariantStats() error = %v", err)
		}
		if stats.Total != 2 || stats.TotalSize != 160 {
			t.Errorf("VariantStats() = %+v", stats)
		}
		if stats.ByType[model.VariantOriginal] != 1 || stats.ByType[model.VariantStripped] != 1 {
			t.Errorf("ByType = %v", stats.ByType)
		}
	})
}
