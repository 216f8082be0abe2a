// internal/sampler/sampler.go
package sampler

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/store"
)

// Reader pulls one complete snapshot from the device.
type Reader interface {
	ReadAll() (store.Snapshot, error)
}

// Config is the minimal runtime config the sampler needs.
type Config struct {
	Device   string
	Interval time.Duration
}

// Sampler is a clock-driven reader. Each tick pulls a full snapshot and
// swaps it into the shared store; a failed tick leaves the previous
// snapshot untouched.
type Sampler struct {
	cfg    Config
	reader Reader
	store  *store.Store
	log    *logrus.Entry
}

// New creates a sampler with immutable config.
func New(cfg Config, reader Reader, st *store.Store, log *logrus.Entry) (*Sampler, error) {
	if cfg.Device == "" {
		return nil, errors.New("sampler: device name required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("sampler: interval must be > 0")
	}
	if reader == nil || st == nil {
		return nil, errors.New("sampler: reader and store required")
	}
	return &Sampler{cfg: cfg, reader: reader, store: st, log: log}, nil
}

// SampleOnce performs exactly one sampling cycle.
func (s *Sampler) SampleOnce() error {
	snap, err := s.reader.ReadAll()
	if err != nil {
		return err
	}
	s.store.Replace(s.cfg.Device, snap)
	return nil
}

// Run starts the ticker loop. One goroutine per device; ticks run
// sequentially so cycles never overlap. A failed cycle is logged and the
// loop keeps going.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SampleOnce(); err != nil {
				s.log.WithError(err).Warn("sampling cycle failed")
			}
		}
	}
}
