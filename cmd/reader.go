package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/anicoll/obis-integration/internal/pkg/contxt"
	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/publisher"
	"github.com/anicoll/obis-integration/internal/pkg/session"
)

// reader serializes access to one aggregator so the poll loop and the
// HTTP API can share it. The aggregator itself is single-owner.
type reader struct {
	mu    sync.Mutex
	agg   *session.Aggregator
	meter model.Meter
}

func newReader(agg *session.Aggregator, meter model.Meter) *reader {
	return &reader{agg: agg, meter: meter}
}

func (r *reader) Status() model.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agg.Status()
}

func (r *reader) Codes() []model.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agg.Registry().All()
}

func (r *reader) AddCode(d model.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agg.Registry().Register(d)
}

// Read runs one pass and fans the result out to the registered sinks.
func (r *reader) Read(ctx context.Context) model.ReadingSet {
	r.mu.Lock()
	set := r.agg.ReadAll(ctx)
	r.mu.Unlock()

	_ = publisher.PublishReadings(contxt.NewContext(time.Second*5), r.meter, set)
	return set
}
