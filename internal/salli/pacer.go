package salli

import "time"

// Pacer spaces out remote requests with a two-tier delay: a jittered short
// delay after most items and a fixed long pause after every batchSize-th
// item, at which point the batch counter resets. A batchSize of zero
// disables the long pause.
type Pacer struct {
	sleeper    Sleeper
	jitter     Jitter
	delayMin   time.Duration
	delayMax   time.Duration
	batchSize  int
	batchPause time.Duration
	count      int
}

// NewPacer creates a Pacer.
func NewPacer(sleeper Sleeper, jitter Jitter, delayMin, delayMax time.Duration, batchSize int, batchPause time.Duration) *Pacer {
	return &Pacer{
		sleeper:    sleeper,
		jitter:     jitter,
		delayMin:   delayMin,
		delayMax:   delayMax,
		batchSize:  batchSize,
		batchPause: batchPause,
	}
}

// Wait counts one completed item and sleeps the delay that follows it.
// It returns the duration slept and whether it was the long pause.
func (p *Pacer) Wait() (time.Duration, bool) {
	p.count++
	if p.batchSize > 0 && p.count >= p.batchSize {
		p.count = 0
		p.sleeper.Sleep(p.batchPause)
		return p.batchPause, true
	}

	d := p.jitter.Between(p.delayMin, p.delayMax)
	p.sleeper.Sleep(d)
	return d, false
}
