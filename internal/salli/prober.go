package salli

import (
	"fmt"
	"sync"
	"time"

	"salli-go/internal/database/sqlc"
	"salli-go/internal/model"
)

// ProberConfig controls the existence prober. It is built once from the
// config file and CLI flags and handed to NewProber.
type ProberConfig struct {
	ArchiveHost  string
	DelayMin     time.Duration
	DelayMax     time.Duration
	BatchSize    int
	BatchPause   time.Duration
	IdleInterval time.Duration
	FetchSize    int
	Limit        int // maximum checks per run; 0 means no limit
	Continuous   bool
}

// DefaultProberConfig returns the stock rate limits: 5-15s between checks,
// a 60s pause every 50 checks, and a 5 minute idle poll.
func DefaultProberConfig() ProberConfig {
	return ProberConfig{
		ArchiveHost:  DefaultArchiveHost,
		DelayMin:     5 * time.Second,
		DelayMax:     15 * time.Second,
		BatchSize:    50,
		BatchPause:   60 * time.Second,
		IdleInterval: 5 * time.Minute,
		FetchSize:    100,
	}
}

// Prober checks pending manuals against the remote archive so items it
// already hosts are never downloaded. Checks run one at a time, paced by a
// Pacer. A failed check is logged and treated as a miss; only ledger errors
// stop the run.
type Prober struct {
	ledger  Ledger
	checker ExistenceChecker
	pacer   *Pacer
	sleeper Sleeper
	clock   Clock
	logger  Logger
	cfg     ProberConfig

	mu    sync.Mutex
	stats model.ProbeStats
}

// NewProber creates a Prober. Zero-valued config fields take their defaults.
func NewProber(ledger Ledger, checker ExistenceChecker, cfg ProberConfig, sleeper Sleeper, jitter Jitter, clock Clock, logger Logger) *Prober {
	def := DefaultProberConfig()
	if cfg.ArchiveHost == "" {
		cfg.ArchiveHost = def.ArchiveHost
	}
	if cfg.FetchSize <= 0 {
		cfg.FetchSize = def.FetchSize
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = def.IdleInterval
	}

	return &Prober{
		ledger:  ledger,
		checker: checker,
		pacer:   NewPacer(sleeper, jitter, cfg.DelayMin, cfg.DelayMax, cfg.BatchSize, cfg.BatchPause),
		sleeper: sleeper,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// Stats returns a copy of the running totals. Safe to call from a signal
// handler while Run is in progress.
func (p *Prober) Stats() model.ProbeStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Run probes pending manuals until none remain (one-shot) or forever,
// re-polling every IdleInterval (continuous). The limit ends either mode.
func (p *Prober) Run() (*model.ProbeStats, error) {
	p.mu.Lock()
	p.stats = model.ProbeStats{Started: p.clock.Now()}
	p.mu.Unlock()

	p.logger.Info("archive probe started",
		"continuous", p.cfg.Continuous,
		"limit", p.cfg.Limit,
		"delay_min", p.cfg.DelayMin,
		"delay_max", p.cfg.DelayMax,
		"batch_size", p.cfg.BatchSize,
		"batch_pause", p.cfg.BatchPause)

	for {
		fetch := p.cfg.FetchSize
		if p.cfg.Limit > 0 {
			remaining := p.cfg.Limit - p.Stats().Checked
			if remaining <= 0 {
				return p.finish(), nil
			}
			fetch = min(fetch, remaining)
		}

		manuals, err := p.ledger.PendingForVerification(fetch)
		if err != nil {
			return p.finish(), fmt.Errorf("fetching manuals to verify: %w", err)
		}

		if len(manuals) == 0 {
			if !p.cfg.Continuous {
				return p.finish(), nil
			}
			p.logger.Info("no manuals to verify, waiting", "interval", p.cfg.IdleInterval)
			p.sleeper.Sleep(p.cfg.IdleInterval)
			continue
		}

		for _, m := range manuals {
			if err := p.probe(m); err != nil {
				return p.finish(), err
			}
			p.pacer.Wait()
		}
	}
}

// probe checks one manual and records the outcome.
func (p *Prober) probe(m *sqlc.Manual) error {
	attrs := manualAttrs(m.ID, m.Brand, m.Model)

	identifier, err := ProbeIdentifier(m)
	if err != nil {
		// Selection guarantees a source id; record the check so the row rotates out.
		p.logger.Warn("cannot probe manual", append(attrs, "error", err)...)
		return p.record(m, false, "", attrs)
	}
	itemURL := ArchiveItemURL(p.cfg.ArchiveHost, identifier)

	exists, err := p.checker.Exists(itemURL)
	if err != nil {
		p.logger.Warn("archive check failed", append(attrs, "url", itemURL, "error", err)...)
		p.mu.Lock()
		p.stats.Errors++
		p.mu.Unlock()
		exists = false
	}

	return p.record(m, exists, itemURL, attrs)
}

func (p *Prober) record(m *sqlc.Manual, exists bool, itemURL string, attrs []any) error {
	if err := p.ledger.RecordArchiveCheck(m.ID, exists, itemURL); err != nil {
		return fmt.Errorf("recording archive check for manual %d: %w", m.ID, err)
	}

	p.mu.Lock()
	p.stats.Checked++
	if exists {
		p.stats.Found++
	}
	p.mu.Unlock()

	if exists {
		p.logger.Info("manual already archived", append(attrs, "url", itemURL)...)
	} else {
		p.logger.Debug("manual not archived", append(attrs, "url", itemURL)...)
	}
	return nil
}

func (p *Prober) finish() *model.ProbeStats {
	stats := p.Stats()
	p.logger.Info("archive probe finished",
		"checked", stats.Checked,
		"found", stats.Found,
		"errors", stats.Errors)
	return &stats
}
