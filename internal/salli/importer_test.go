package salli_test

import (
	"slices"
	"strings"
	"testing"

	"salli-go/internal/model"
	"salli-go/internal/salli"
	"salli-go/internal/testutil"
)

const manualsCSV = `brand,model,manual_url,source,source_id,doc_type,category
Sony,KV-27,https://manualslib.example/sony/kv27,manualslib,12345,Owner's Manual,TV
Zenith,Z-1,https://manualzz.example/z1,manualzz,,Service Manual,Radio
Grundig,G-9,,manualslib,999,,
Sony,KV-27,https://manualslib.example/sony/kv27,manualslib,12345,Owner's Manual,TV
`

const brandsJSONL = `{"name": "Sony", "slug": "sony", "brand_url": "https://example.com/brand/sony/", "categories": ["TV", "Radio"], "indexed": true}

{"name": "Zenith", "slug": "zenith", "category_urls": "/c/tv|/c/radio"}
{"name": "No slug"}
`

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want salli.ImportFormat
	}{
		{"manuals.csv", salli.FormatCSV},
		{"brands.JSONL", salli.FormatJSONL},
		{"out/brands.ndjson", salli.FormatJSONL},
		{"dump.json", salli.FormatJSONL},
		{"listing", salli.FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := salli.FormatForPath(tt.path); got != tt.want {
				t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestImporter_Manuals(t *testing.T) {
	t.Run("adds new rows and counts existing ones", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		im := salli.NewImporter(db, salli.NewNopLogger())

		stats, err := im.Manuals(strings.NewReader(manualsCSV), salli.FormatCSV)
		if err != nil {
			t.Fatalf("Manuals() error = %v", err)
		}
		want := model.ImportStats{Rows: 4, Created: 2, Existing: 1, Skipped: 1}
		if *stats != want {
			t.Errorf("stats = %+v, want %+v", *stats, want)
		}

		m, err := db.FindManualByURL("https://manualslib.example/sony/kv27")
		if err != nil || m == nil {
			t.Fatalf("FindManualByURL() = %v, %v", m, err)
		}
		if m.Brand != "Sony" || m.Model != "KV-27" || m.Source != "manualslib" {
			t.Errorf("manual = %s/%s/%s", m.Brand, m.Model, m.Source)
		}
		if m.SourceID.String != "12345" || m.DocType.String != "Owner's Manual" || m.Category.String != "TV" {
			t.Errorf("optional fields = %q/%q/%q", m.SourceID.String, m.DocType.String, m.Category.String)
		}

		z, _ := db.FindManualByURL("https://manualzz.example/z1")
		if z == nil || z.SourceID.Valid {
			t.Errorf("zenith manual = %+v, want no source id", z)
		}
	})

	t.Run("second import only finds existing rows", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		im := salli.NewImporter(db, salli.NewNopLogger())

		if _, err := im.Manuals(strings.NewReader(manualsCSV), salli.FormatCSV); err != nil {
			t.Fatalf("first Manuals() error = %v", err)
		}
		stats, err := im.Manuals(strings.NewReader(manualsCSV), salli.FormatCSV)
		if err != nil {
			t.Fatalf("second Manuals() error = %v", err)
		}
		if stats.Created != 0 || stats.Existing != 3 {
			t.Errorf("stats = %+v, want 0 created, 3 existing", *stats)
		}
	})

	t.Run("jsonl", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		im := salli.NewImporter(db, salli.NewNopLogger())

		in := `{"brand": "Sony", "model": "KV-27", "manual_url": "https://x.example/1", "source": "manualsbase", "model_id": 42}`
		stats, err := im.Manuals(strings.NewReader(in), salli.FormatJSONL)
		if err != nil {
			t.Fatalf("Manuals() error = %v", err)
		}
		if stats.Created != 1 {
			t.Errorf("stats = %+v, want 1 created", *stats)
		}
		m, _ := db.FindManualByURL("https://x.example/1")
		if m == nil || m.ModelID.String != "42" {
			t.Errorf("manual = %+v, want model id 42", m)
		}
	})

	errTests := []struct {
		name     string
		format   salli.ImportFormat
		in       string
		wantLine string
		wantRows int
	}{
		{
			name:     "invalid source",
			format:   salli.FormatCSV,
			in:       "brand,model,manual_url,source\nSony,A,https://x.example/a,manualslib\nSony,B,https://x.example/b,Manuals Lib\n",
			wantLine: "line 3",
			wantRows: 2,
		},
		{
			name:     "missing source column",
			format:   salli.FormatCSV,
			in:       "brand,model,manual_url\nSony,A,https://x.example/a\n",
			wantLine: "line 2",
			wantRows: 1,
		},
		{
			name:     "malformed json",
			format:   salli.FormatJSONL,
			in:       "{\"brand\": \"Sony\", \"manual_url\": \"https://x.example/a\", \"source\": \"manualzz\"}\n{oops\n",
			wantLine: "line 2",
			wantRows: 1,
		},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewTestDatabase(t, testutil.FixedClock())
			im := salli.NewImporter(db, salli.NewNopLogger())

			stats, err := im.Manuals(strings.NewReader(tt.in), tt.format)
			if err == nil {
				t.Fatal("Manuals() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("error = %v, want it to name %s", err, tt.wantLine)
			}
			if stats.Rows != tt.wantRows {
				t.Errorf("rows = %d, want %d", stats.Rows, tt.wantRows)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		im := salli.NewImporter(db, salli.NewNopLogger())
		if _, err := im.Manuals(strings.NewReader(manualsCSV), "xml"); err == nil {
			t.Error("Manuals() expected error for unknown format")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		im := salli.NewImporter(db, salli.NewNopLogger())
		stats, err := im.Manuals(strings.NewReader(""), salli.FormatCSV)
		if err != nil {
			t.Fatalf("Manuals() error = %v", err)
		}
		if stats.Rows != 0 {
			t.Errorf("rows = %d, want 0", stats.Rows)
		}
	})
}

func TestImporter_Brands(t *testing.T) {
	t.Run("jsonl with index flags", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		logger := &testutil.RecordingLogger{}
		im := salli.NewImporter(db, logger)

		stats, err := im.Brands(strings.NewReader(brandsJSONL), salli.FormatJSONL)
		if err != nil {
			t.Fatalf("Brands() error = %v", err)
		}
		want := model.ImportStats{Rows: 3, Created: 2, Skipped: 1, Indexed: 1}
		if *stats != want {
			t.Errorf("stats = %+v, want %+v", *stats, want)
		}
		if len(logger.Find("skipping brand without slug")) != 1 {
			t.Error("skipped brand was not logged")
		}

		sony, _ := db.FindBrandBySlug("sony")
		if sony == nil || !sony.Indexed {
			t.Fatalf("sony = %+v, want indexed", sony)
		}
		if sony.BrandUrl.String != "https://example.com/brand/sony/" {
			t.Errorf("brand url = %q", sony.BrandUrl.String)
		}

		indexed := true
		got, err := db.ListBrands(&indexed)
		if err != nil {
			t.Fatalf("ListBrands() error = %v", err)
		}
		var slugs []string
		for _, b := range got {
			slugs = append(slugs, b.Slug)
		}
		if !slices.Equal(slugs, []string{"sony"}) {
			t.Errorf("indexed brands = %v, want [sony]", slugs)
		}
	})

	t.Run("csv marks an existing brand indexed", func(t *testing.T) {
		db := testutil.NewTestDatabase(t, testutil.FixedClock())
		im := salli.NewImporter(db, salli.NewNopLogger())
		if _, _, err := db.AddBrand(&model.NewBrand{Name: "Sony", Slug: "sony"}); err != nil {
			t.Fatalf("AddBrand() error = %v", err)
		}

		in := "Name,Slug,Categories,Indexed\nSony,sony,TV|Radio,yes\nZenith,zenith,,false\n"
		stats, err := im.Brands(strings.NewReader(in), salli.FormatCSV)
		if err == nil {
			t.Fatal("Brands() expected error for indexed=yes")
		}
		if !strings.Contains(err.Error(), "line 2") || stats.Created != 0 {
			t.Errorf("error = %v, stats = %+v", err, *stats)
		}

		in = "Name,Slug,Categories,Indexed\nSony,sony,TV|Radio,true\nZenith,zenith,,false\n"
		stats, err = im.Brands(strings.NewReader(in), salli.FormatCSV)
		if err != nil {
			t.Fatalf("Brands() error = %v", err)
		}
		want := model.ImportStats{Rows: 2, Created: 1, Existing: 1, Indexed: 1}
		if *stats != want {
			t.Errorf("stats = %+v, want %+v", *stats, want)
		}
		sony, _ := db.FindBrandBySlug("sony")
		if !sony.Indexed {
			t.Error("existing brand not marked indexed")
		}
		zenith, _ := db.FindBrandBySlug("zenith")
		if zenith == nil || zenith.Indexed {
			t.Errorf("zenith = %+v, want present and not indexed", zenith)
		}
	})
}
