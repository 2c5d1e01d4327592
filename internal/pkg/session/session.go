package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/obis-integration/internal/pkg/config"
	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/obis"
	"github.com/anicoll/obis-integration/internal/pkg/registry"
	"github.com/anicoll/obis-integration/internal/pkg/validate"
)

// healthWindow bounds how many recent reads feed the health ratio.
const healthWindow = 100

const (
	degradedThreshold  = 0.2
	unhealthyThreshold = 0.5
)

// Aggregator runs read passes over one registry against one source.
// It owns its registry and counters exclusively; run one aggregator per
// meter rather than sharing one across goroutines.
type Aggregator struct {
	cfg      *config.MeterConfig
	registry *registry.Registry
	source   Source
	logger   *zap.Logger

	parsed map[string]obis.Components

	stats           model.SessionCounters
	recent          []bool
	health          model.HealthStatus
	lastHealthCheck time.Time
}

// New builds an aggregator. A nil source falls back to the deterministic
// sample source for offline runs.
func New(cfg *config.MeterConfig, reg *registry.Registry, source Source) *Aggregator {
	if source == nil {
		source = NewSampleSource(reg)
	}
	return &Aggregator{
		cfg:      cfg,
		registry: reg,
		source:   source,
		logger:   zap.L(),
		parsed:   make(map[string]obis.Components),
		health:   model.Healthy,
	}
}

func (a *Aggregator) Registry() *registry.Registry {
	return a.registry
}

// ReadAll performs one synchronous pass over every registered code in
// insertion order. A failure on one code never aborts the pass; the
// reading is marked invalid and the pass continues.
func (a *Aggregator) ReadAll(ctx context.Context) model.ReadingSet {
	set := model.ReadingSet{
		MeterID: a.cfg.DeviceID,
		Taken:   time.Now(),
	}

	for _, d := range a.registry.All() {
		reading := a.readOne(ctx, d)
		set.Readings = append(set.Readings, reading)

		a.stats.TotalReads++
		if reading.Valid {
			a.stats.SuccessfulReads++
		} else {
			a.stats.FailedReads++
		}
		a.record(reading.Valid)
	}

	a.recomputeHealth()
	a.logger.Debug("read pass complete",
		zap.String("device_id", a.cfg.DeviceID),
		zap.Int("readings", len(set.Readings)),
		zap.Int("valid", set.ValidCount()),
		zap.String("health", a.health.String()),
	)
	return set
}

func (a *Aggregator) readOne(ctx context.Context, d model.Descriptor) model.Reading {
	reading := model.Reading{
		Code:      d.Code,
		Name:      d.Name,
		Unit:      d.Unit,
		Timestamp: time.Now(),
	}

	if _, err := a.components(d.Code); err != nil {
		// the registry rejects unparseable codes, so this only fires for
		// registries assembled outside Register.
		reading.Err = err.Error()
		return reading
	}

	raw, err := a.acquire(ctx, d.Code)
	if err != nil {
		a.logger.Warn("failed to acquire value",
			zap.String("code", d.Code),
			zap.Error(err),
		)
		reading.Err = err.Error()
		return reading
	}
	reading.RawValue = raw

	value, err := validate.Value(d, raw)
	if err != nil {
		a.stats.ValidationErrors++
		a.logger.Warn("validation failed",
			zap.String("code", d.Code),
			zap.Any("raw_value", raw),
			zap.Error(err),
		)
		reading.Err = err.Error()
		return reading
	}

	reading.Value = value
	reading.Valid = true
	return reading
}

// acquire fetches one raw value with the configured timeout, retrying
// transport failures up to RetryCount times. Validation is never
// retried; it is deterministic.
func (a *Aggregator) acquire(ctx context.Context, code string) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= a.cfg.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(a.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		raw, err := a.source.Fetch(fetchCtx, code)
		cancel()
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		lastErr = err
	}
	return nil, lastErr
}

// components memoizes parse results; parsing is pure so the cache is
// keyed by the original code string.
func (a *Aggregator) components(code string) (obis.Components, error) {
	if c, ok := a.parsed[code]; ok {
		return c, nil
	}
	c, err := obis.Parse(code)
	if err != nil {
		return obis.Components{}, err
	}
	a.parsed[code] = c
	return c, nil
}

func (a *Aggregator) record(ok bool) {
	a.recent = append(a.recent, ok)
	if len(a.recent) > healthWindow {
		a.recent = a.recent[len(a.recent)-healthWindow:]
	}
}

func (a *Aggregator) recomputeHealth() {
	a.lastHealthCheck = time.Now()
	if len(a.recent) == 0 {
		a.health = model.Healthy
		return
	}

	failed := 0
	for _, ok := range a.recent {
		if !ok {
			failed++
		}
	}
	ratio := float64(failed) / float64(len(a.recent))

	switch {
	case ratio > unhealthyThreshold:
		a.health = model.Unhealthy
	case ratio > degradedThreshold:
		a.health = model.Degraded
	default:
		a.health = model.Healthy
	}
}

// Status reports the current health, counters and configuration.
func (a *Aggregator) Status() model.Status {
	return model.Status{
		DeviceID:        a.cfg.DeviceID,
		MeterType:       a.cfg.MeterType,
		Timeout:         a.cfg.Timeout,
		RetryCount:      a.cfg.RetryCount,
		RetryDelay:      a.cfg.RetryDelay,
		RegisteredCodes: a.registry.Len(),
		Health:          a.health,
		LastHealthCheck: a.lastHealthCheck,
		Stats:           a.stats,
	}
}

// Reset clears the counters and the health window. Counters never reset
// implicitly; this is the explicit operation.
func (a *Aggregator) Reset() {
	a.stats = model.SessionCounters{}
	a.recent = nil
	a.health = model.Healthy
}
