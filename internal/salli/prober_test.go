package salli_test

import (
	"errors"
	"slices"
	"strconv"
	"testing"
	"time"

	"salli-go/internal/database"
	"salli-go/internal/model"
	"salli-go/internal/salli"
	"salli-go/internal/testutil"
)

func testProberConfig() salli.ProberConfig {
	return salli.ProberConfig{
		DelayMin:     5 * time.Second,
		DelayMax:     15 * time.Second,
		BatchSize:    50,
		BatchPause:   time.Minute,
		IdleInterval: 5 * time.Minute,
		FetchSize:    100,
	}
}

func addTestManual(t *testing.T, db *database.SQLiteDatabase, source model.Source, sourceID, brand, modelName string) int64 {
	t.Helper()
	id, _, err := db.AddManual(&model.NewManual{
		Brand:     brand,
		Model:     modelName,
		ManualURL: "https://" + string(source) + ".example/" + brand + "/" + modelName,
		Source:    source,
		SourceID:  sourceID,
	})
	if err != nil {
		t.Fatalf("AddManual() error = %v", err)
	}
	return id
}

func TestProber_Run(t *testing.T) {
	t.Run("marks found manuals archived", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		checker := testutil.NewStubChecker()
		sleeper := &testutil.RecordingSleeper{}

		found := addTestManual(t, db, model.SourceManualzz, "42", "Sony", "KV-27")
		missing := addTestManual(t, db, model.SourceManualzz, "43", "Sony", "KV-32")
		unprobeable := addTestManual(t, db, model.SourceManualsLib, "", "Acme", "W1")
		checker.SetPresent("https://archive.org/details/manualzz-id-42", true)

		p := salli.NewProber(db, checker, testProberConfig(), sleeper, testutil.FixedJitter{}, clock, salli.NewNopLogger())
		stats, err := p.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Checked != 2 || stats.Found != 1 || stats.Errors != 0 {
			t.Errorf("stats = %+v, want 2 checked, 1 found", stats)
		}

		m, _ := db.FindManualByID(found)
		if !m.Archived || m.ArchiveUrl.String != "https://archive.org/details/manualzz-id-42" {
			t.Errorf("found manual archived=%v url=%q", m.Archived, m.ArchiveUrl.String)
		}
		m, _ = db.FindManualByID(missing)
		if m.Archived || !m.ArchiveCheckedAt.Valid {
			t.Errorf("missing manual archived=%v checked=%v", m.Archived, m.ArchiveCheckedAt.Valid)
		}
		m, _ = db.FindManualByID(unprobeable)
		if m.ArchiveCheckedAt.Valid {
			t.Error("manual without source id was probed")
		}

		pending, err := db.PendingForDownload(model.DownloadFilter{})
		if err != nil {
			t.Fatalf("PendingForDownload() error = %v", err)
		}
		for _, m := range pending {
			if m.ID == found {
				t.Error("archived manual still pending download")
			}
		}

		if got, want := sleeper.Sleeps(), []time.Duration{5 * time.Second, 5 * time.Second}; !slices.Equal(got, want) {
			t.Errorf("sleeps = %v, want %v", got, want)
		}
	})

	t.Run("negative results are not rechecked until stale", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		checker := testutil.NewStubChecker()
		addTestManual(t, db, model.SourceManualzz, "43", "Sony", "KV-32")

		run := func() *model.ProbeStats {
			p := salli.NewProber(db, checker, testProberConfig(), &testutil.RecordingSleeper{}, testutil.FixedJitter{}, clock, salli.NewNopLogger())
			stats, err := p.Run()
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			return stats
		}

		if s := run(); s.Checked != 1 {
			t.Fatalf("first run checked %d, want 1", s.Checked)
		}
		clock.Advance(6 * 24 * time.Hour)
		if s := run(); s.Checked != 0 {
			t.Errorf("run inside window checked %d, want 0", s.Checked)
		}
		clock.Advance(2 * 24 * time.Hour)
		if s := run(); s.Checked != 1 {
			t.Errorf("run after window checked %d, want 1", s.Checked)
		}
	})

	t.Run("check errors count as misses", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		checker := testutil.NewStubChecker()
		id := addTestManual(t, db, model.SourceManualzz, "42", "Sony", "KV-27")
		checker.Errors["https://archive.org/details/manualzz-id-42"] = errors.New("timeout")

		p := salli.NewProber(db, checker, testProberConfig(), &testutil.RecordingSleeper{}, testutil.FixedJitter{}, clock, salli.NewNopLogger())
		stats, err := p.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Checked != 1 || stats.Errors != 1 || stats.Found != 0 {
			t.Errorf("stats = %+v", stats)
		}
		m, _ := db.FindManualByID(id)
		if m.Archived || !m.ArchiveCheckedAt.Valid {
			t.Errorf("archived=%v checked=%v, want unarchived and checked", m.Archived, m.ArchiveCheckedAt.Valid)
		}
	})

	t.Run("limit bounds the run", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		checker := testutil.NewStubChecker()
		for i := range 5 {
			addTestManual(t, db, model.SourceManualzz, strconv.Itoa(100+i), "Sony", "M"+strconv.Itoa(i))
		}

		cfg := testProberConfig()
		cfg.Limit = 2
		p := salli.NewProber(db, checker, cfg, &testutil.RecordingSleeper{}, testutil.FixedJitter{}, clock, salli.NewNopLogger())
		stats, err := p.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Checked != 2 || len(checker.Calls) != 2 {
			t.Errorf("checked %d with %d calls, want 2", stats.Checked, len(checker.Calls))
		}
	})

	t.Run("batch pause after batch size checks", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		for i := range 4 {
			addTestManual(t, db, model.SourceManualzz, strconv.Itoa(i+1), "Sony", "M"+strconv.Itoa(i))
		}

		cfg := testProberConfig()
		cfg.BatchSize = 2
		sleeper := &testutil.RecordingSleeper{}
		p := salli.NewProber(db, testutil.NewStubChecker(), cfg, sleeper, testutil.FixedJitter{}, clock, salli.NewNopLogger())
		if _, err := p.Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		s := 5 * time.Second
		want := []time.Duration{s, time.Minute, s, time.Minute}
		if got := sleeper.Sleeps(); !slices.Equal(got, want) {
			t.Errorf("sleeps = %v, want %v", got, want)
		}
	})

	t.Run("continuous mode polls when idle", func(t *testing.T) {
		clock := testutil.FixedClock()
		db := testutil.NewTestDatabase(t, clock)
		checker := testutil.NewStubChecker()
		addTestManual(t, db, model.SourceManualzz, "1", "Sony", "A")

		cfg := testProberConfig()
		cfg.Continuous = true
		cfg.Limit = 2

		sleeper := &testutil.RecordingSleeper{}
		sleeper.OnSleep = func(n int) {
			sleeps := sleeper.Sleeps()
			if sleeps[n-1] == cfg.IdleInterval && n == 2 {
				addTestManual(t, db, model.SourceManualzz, "2", "Sony", "B")
			}
		}

		p := salli.NewProber(db, checker, cfg, sleeper, testutil.FixedJitter{}, clock, salli.NewNopLogger())
		stats, err := p.Run()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.Checked != 2 {
			t.Errorf("Checked = %d, want 2", stats.Checked)
		}

		s := 5 * time.Second
		want := []time.Duration{s, cfg.IdleInterval, s}
		if got := sleeper.Sleeps(); !slices.Equal(got, want) {
			t.Errorf("sleeps = %v, want %v", got, want)
		}
		if got := p.Stats(); got.Checked != 2 {
			t.Errorf("Stats().Checked = %d, want 2", got.Checked)
		}
	})
}
