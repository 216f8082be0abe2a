// internal/delivery/pipeline.go
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/lwz"
	"github.com/hpmon/mblwz/internal/store"
)

// Field maps a snapshot register to the label it is exported under.
type Field struct {
	Register string
	Label    string
}

// DefaultFields is the exported subset in the reference deployment.
var DefaultFields = []Field{
	{Register: lwz.OutsideTemp, Label: "Outside"},
	{Register: lwz.BathroomTemp, Label: "Bathroom"},
}

// Record is one sample prepared for delivery: either transmitted or appended
// to the fallback store, never both.
type Record struct {
	Timestamp float64
	Values    []float64 // aligned with the pipeline's field list
}

// Config is the delivery runtime config.
type Config struct {
	Device        string
	Endpoint      string
	Username      string
	Password      string
	FailureMarker string // lowercase body substring that flags a degraded 2xx
	Fields        []Field
	Interval      time.Duration
	Timeout       time.Duration
}

// Pipeline pushes the latest snapshot to the remote sink on a slow interval
// and falls back to the local append-only store when delivery fails.
type Pipeline struct {
	cfg      Config
	store    *store.Store
	fallback *Fallback
	client   *http.Client
	now      func() time.Time
	log      *logrus.Entry
}

// New creates a pipeline with immutable config.
func New(cfg Config, st *store.Store, fallback *Fallback, log *logrus.Entry) (*Pipeline, error) {
	if cfg.Device == "" {
		return nil, errors.New("delivery: device name required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("delivery: endpoint required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("delivery: interval must be > 0")
	}
	if st == nil || fallback == nil {
		return nil, errors.New("delivery: store and fallback required")
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFields
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Pipeline{
		cfg:      cfg,
		store:    st,
		fallback: fallback,
		client:   &http.Client{Timeout: cfg.Timeout},
		now:      time.Now,
		log:      log,
	}, nil
}

// DeliverOnce performs exactly one delivery cycle. An unsampled device is
// skipped silently; a failed push ends up in the fallback store. Nothing
// here can stop the pipeline.
func (p *Pipeline) DeliverOnce() {
	snap, ok := p.store.Get(p.cfg.Device)
	if !ok {
		return
	}

	rec := p.buildRecord(snap)
	if err := p.push(rec); err != nil {
		p.log.WithError(err).Warn("delivery failed, keeping sample locally")
		if ferr := p.fallback.Append(rec); ferr != nil {
			p.log.WithError(ferr).Error("fallback write failed")
		}
	}
}

func (p *Pipeline) buildRecord(snap store.Snapshot) Record {
	rec := Record{
		Timestamp: float64(p.now().UTC().UnixNano()) / float64(time.Second),
		Values:    make([]float64, len(p.cfg.Fields)),
	}
	for i, f := range p.cfg.Fields {
		rec.Values[i] = snap[f.Register]
	}
	return rec
}

// push attempts one transmission. Failure is any of: transport error, non-2xx
// status, or a 2xx body carrying the failure marker (the sink can report
// success at the transport level while its payload says otherwise).
func (p *Pipeline) push(rec Record) error {
	payload := make(map[string]float64, len(p.cfg.Fields)+1)
	payload["timestamp"] = rec.Timestamp
	for i, f := range p.cfg.Fields {
		payload[f.Label] = rec.Values[i]
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("delivery: encode: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("delivery: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.cfg.Username, p.cfg.Password)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery: post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delivery: sink returned %s", resp.Status)
	}
	if m := p.cfg.FailureMarker; m != "" && strings.Contains(strings.ToLower(string(respBody)), m) {
		return fmt.Errorf("delivery: sink body contains %q", m)
	}
	return nil
}

// Run starts the ticker loop. Failures never escalate past a log line.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.DeliverOnce()
		}
	}
}
