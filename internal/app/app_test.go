package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"salli-go/internal/config"
	"salli-go/internal/database"
	"salli-go/internal/model"
	"salli-go/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig("host-1", t.TempDir())
	cfg.Encryption.Type = "test"
	cfg.Download.TempDir = t.TempDir()
	return cfg
}

// newTestApp opens an app with remote collaborators replaced by stubs.
func newTestApp(t *testing.T, cfg *config.Config, operation string) *SalliApp {
	t.Helper()
	a, err := New(cfg, operation)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.checker = testutil.NewStubChecker()
	a.uploader = &testutil.StubUploader{}
	a.fetcher = testutil.NewStubFetcher()
	a.cleaner = &testutil.StubCleaner{}
	a.sleeper = &testutil.RecordingSleeper{}
	a.jitter = testutil.FixedJitter{}
	return a
}

func addManual(t *testing.T, a *SalliApp, sourceID string) int64 {
	t.Helper()
	id, _, err := a.db.AddManual(&model.NewManual{
		Brand:     "Sony",
		Model:     "KV-" + sourceID,
		ManualURL: "https://manualzz.example/doc/" + sourceID,
		Source:    model.SourceManualzz,
		SourceID:  sourceID,
	})
	if err != nil {
		t.Fatalf("AddManual() error = %v", err)
	}
	return id
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.pdf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSalliApp_snapshotLifecycle(t *testing.T) {
	cfg := testConfig(t)

	a := newTestApp(t, cfg, "Ingest")
	id := addManual(t, a, "42")
	if _, err := a.Ingest(id, writeTempFile(t, "manual body"), ""); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A read-only run does not advance the snapshot.
	a = newTestApp(t, cfg, "Stats")
	report, err := a.Stats("")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if report.Ledger.Total != 1 || report.Ledger.Downloaded != 1 {
		t.Errorf("ledger stats = %+v", report.Ledger)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ledger, err := LedgerPath(cfg)
	if err != nil {
		t.Fatalf("LedgerPath() error = %v", err)
	}
	if err := os.Remove(ledger); err != nil {
		t.Fatalf("removing ledger: %v", err)
	}

	if _, err := New(cfg, "Stats"); err == nil || !strings.Contains(err.Error(), "behind") {
		t.Fatalf("New() on a fresh ledger error = %v, want behind-snapshot refusal", err)
	}

	version, err := RestoreSnapshot(cfg, ledger, "")
	if err != nil {
		t.Fatalf("RestoreSnapshot() error = %v", err)
	}
	if version != 1 {
		t.Errorf("snapshot version = %d, want 1", version)
	}

	restored, err := database.NewSQLiteDatabase(ledger, nil)
	if err != nil {
		t.Fatalf("opening restored ledger: %v", err)
	}
	m, err := restored.FindManualByID(id)
	restored.Close()
	if err != nil || m == nil || !m.Downloaded {
		t.Fatalf("restored manual = %+v, %v", m, err)
	}

	a = newTestApp(t, cfg, "Stats")
	a.Close()
}

func TestSalliApp_History(t *testing.T) {
	cfg := testConfig(t)

	a := newTestApp(t, cfg, "Ingest")
	if _, err := a.Ingest(999, writeTempFile(t, "x"), ""); err == nil {
		t.Fatal("Ingest() of unknown manual succeeded")
	}
	a.Close()

	a = newTestApp(t, cfg, "Clean")
	if _, err := a.Clean(0); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	a.Close()

	a = newTestApp(t, cfg, "History")
	defer a.Close()
	runs, err := a.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("History() returned %d runs, want 2", len(runs))
	}

	byName := map[string]string{}
	for _, r := range runs {
		byName[r.Operation] = r.Status
		if !r.FinishedAt.Valid {
			t.Errorf("run %d not finished", r.ID)
		}
	}
	if byName["Ingest"] != "error" || byName["Clean"] != "success" {
		t.Errorf("run statuses = %v", byName)
	}
}

func TestSalliApp_Upload(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg, "Upload")
	defer a.Close()

	id := addManual(t, a, "42")
	if _, err := a.downloader().Ingest(id, writeTempFile(t, "manual body"), "kv42.pdf"); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	stats, err := a.Upload("", 0, false)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if stats.Uploaded != 1 {
		t.Errorf("stats = %+v", stats)
	}

	uploader := a.uploader.(*testutil.StubUploader)
	if len(uploader.Requests) != 1 || uploader.Requests[0].RemoteFilename != "kv42.pdf" {
		t.Errorf("requests = %+v", uploader.Requests)
	}

	m, _ := a.db.FindManualByID(id)
	if !m.Archived || m.ArchiveUrl.String != "https://archive.org/details/manualzz-id-42" {
		t.Errorf("archived=%v url=%q", m.Archived, m.ArchiveUrl.String)
	}
}

func TestSalliApp_NewProber(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg, "Verify")
	defer a.Close()

	addManual(t, a, "42")
	a.checker.(*testutil.StubChecker).SetPresent("https://archive.org/details/manualzz-id-42", true)

	pcfg := a.ProberConfig()
	if pcfg.BatchSize != 50 || pcfg.IdleInterval.Minutes() != 5 {
		t.Errorf("ProberConfig() = %+v", pcfg)
	}
	pcfg.Limit = 1

	p, err := a.NewProber(pcfg)
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}
	stats, err := p.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Checked != 1 || stats.Found != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if !a.op.Persisted() {
		t.Error("verify run not persisted")
	}
}

func TestSalliApp_Variants(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg, "Variants")
	defer a.Close()

	id := addManual(t, a, "42")
	if _, err := a.downloader().Ingest(id, writeTempFile(t, "manual body"), ""); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	variants, err := a.ListVariants(id)
	if err != nil {
		t.Fatalf("ListVariants() error = %v", err)
	}
	if len(variants) != 1 || variants[0].VariantType != string(model.VariantOriginal) {
		t.Errorf("variants = %+v", variants)
	}

	if err := a.SetPrimaryVariant(id, model.VariantStripped); err == nil {
		t.Error("SetPrimaryVariant() to a missing kind succeeded")
	}
	if _, err := a.ListVariants(999); err == nil {
		t.Error("ListVariants() of unknown manual succeeded")
	}
}

func TestSalliApp_Clear(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg, "Clear")
	defer a.Close()

	addManual(t, a, "1")
	addManual(t, a, "2")
	if _, _, err := a.db.AddBrand(&model.NewBrand{Name: "Sony", Slug: "sony"}); err != nil {
		t.Fatalf("AddBrand() error = %v", err)
	}

	if _, err := a.Clear(ClearScope{}); err == nil {
		t.Error("Clear() with empty scope succeeded")
	}

	res, err := a.Clear(ClearScope{Manuals: true, Brands: true})
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if res.Manuals != 2 || res.Brands != 1 {
		t.Errorf("Clear() = %+v", res)
	}
}

func TestSalliApp_Import(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	manuals := filepath.Join(dir, "manuals.csv")
	brands := filepath.Join(dir, "brands.jsonl")
	if err := os.WriteFile(manuals, []byte("brand,model,manual_url,source\nSony,KV-1,https://manualzz.example/doc/1,manualzz\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(brands, []byte(`{"name": "Sony", "slug": "sony", "indexed": true}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, cfg, "Import")
	res, err := a.Import(ImportPaths{Manuals: manuals, Brands: brands})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Manuals.Created != 1 || res.Brands.Created != 1 || res.Brands.Indexed != 1 {
		t.Errorf("Import() = manuals %+v, brands %+v", *res.Manuals, *res.Brands)
	}
	a.Close()

	a = newTestApp(t, cfg, "Import")
	res, err = a.Import(ImportPaths{Manuals: manuals})
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if res.Brands != nil || res.Manuals.Created != 0 || res.Manuals.Existing != 1 {
		t.Errorf("second Import() = %+v", res)
	}
	if _, err := a.Import(ImportPaths{Manuals: filepath.Join(dir, "missing.csv")}); err == nil {
		t.Error("Import() of missing file succeeded")
	}
	a.Close()

	a = newTestApp(t, cfg, "History")
	defer a.Close()
	runs, err := a.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("History() returned %d runs, want 2", len(runs))
	}
	if runs[0].Operation != "Import" || runs[0].Status != "error" || runs[1].Status != "success" {
		t.Errorf("runs = %+v, %+v", runs[0], runs[1])
	}
}

func TestSnapshotNeedsPassphrase(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want bool
	}{
		{"test encryptor", "test", true},
		{"no encryption", "none", false},
		{"age without keys", "age", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig("host-1", t.TempDir())
			cfg.Encryption.Type = tt.typ
			got, err := SnapshotNeedsPassphrase(cfg)
			if err != nil {
				t.Fatalf("SnapshotNeedsPassphrase() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SnapshotNeedsPassphrase() = %v, want %v", got, tt.want)
			}
		})
	}
}
