package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/obis-integration/internal/pkg/config"
	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/registry"
)

type fetchFunc func(ctx context.Context, code string) (any, error)

func (f fetchFunc) Fetch(ctx context.Context, code string) (any, error) {
	return f(ctx, code)
}

func testConfig() *config.MeterConfig {
	return &config.MeterConfig{
		DeviceID:   "meter-test",
		MeterType:  model.MeterElectricity,
		Timeout:    time.Second,
		RetryCount: 0,
		RetryDelay: time.Millisecond,
	}
}

func newTestAggregator(t *testing.T, reg *registry.Registry, src Source) *Aggregator {
	t.Helper()
	originalLogger := zap.L()
	zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(func() {
		zap.ReplaceGlobals(originalLogger)
	})
	return New(testConfig(), reg, src)
}

func electricityRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.ForMeterType(model.MeterElectricity)
	require.NoError(t, err)
	return reg
}

func TestReadAll_SampleSourcePass(t *testing.T) {
	reg := electricityRegistry(t)
	a := newTestAggregator(t, reg, nil)

	set := a.ReadAll(context.Background())

	require.Len(t, set.Readings, reg.Len())
	assert.Equal(t, "meter-test", set.MeterID)
	assert.Equal(t, reg.Len(), set.ValidCount())

	status := a.Status()
	assert.Equal(t, uint64(reg.Len()), status.Stats.TotalReads)
	assert.Equal(t, uint64(reg.Len()), status.Stats.SuccessfulReads)
	assert.Equal(t, uint64(0), status.Stats.FailedReads)
	assert.Equal(t, model.Healthy, status.Health)
	assert.False(t, status.LastHealthCheck.IsZero())
}

func TestReadAll_PreservesRegistryOrder(t *testing.T) {
	reg := electricityRegistry(t)
	a := newTestAggregator(t, reg, nil)

	set := a.ReadAll(context.Background())
	for i, d := range reg.All() {
		assert.Equal(t, d.Code, set.Readings[i].Code)
	}
}

func TestReadAll_SampleSourceDeterministic(t *testing.T) {
	reg := electricityRegistry(t)
	first := newTestAggregator(t, reg, nil).ReadAll(context.Background())
	second := newTestAggregator(t, reg, nil).ReadAll(context.Background())

	require.Len(t, second.Readings, len(first.Readings))
	for i := range first.Readings {
		assert.Equal(t, first.Readings[i].Value, second.Readings[i].Value, first.Readings[i].Code)
	}
}

func TestReadAll_SingleFailureDoesNotAbortPass(t *testing.T) {
	reg := electricityRegistry(t)
	sample := NewSampleSource(reg)
	src := fetchFunc(func(ctx context.Context, code string) (any, error) {
		if code == "1.0.32.7.0.255" {
			return 600.0, nil // out of range for V
		}
		return sample.Fetch(ctx, code)
	})

	a := newTestAggregator(t, reg, src)
	set := a.ReadAll(context.Background())

	require.Len(t, set.Readings, reg.Len())
	assert.Equal(t, reg.Len()-1, set.ValidCount())

	bad, ok := set.Get("1.0.32.7.0.255")
	require.True(t, ok)
	assert.False(t, bad.Valid)
	assert.Contains(t, bad.Err, "range violation")
	assert.Equal(t, 600.0, bad.RawValue)
	assert.Nil(t, bad.Value)

	status := a.Status()
	assert.Equal(t, uint64(reg.Len()), status.Stats.TotalReads)
	assert.Equal(t, uint64(1), status.Stats.FailedReads)
	assert.Equal(t, uint64(1), status.Stats.ValidationErrors)
}

func TestReadAll_TypeMismatchCountsValidationError(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(model.Descriptor{
		Code: "1.0.0.0.0.255", Name: "meter_id", Type: model.TypeString,
	}))

	src := fetchFunc(func(ctx context.Context, code string) (any, error) {
		return int64(12345678), nil
	})
	a := newTestAggregator(t, reg, src)

	set := a.ReadAll(context.Background())
	r, ok := set.Get("1.0.0.0.0.255")
	require.True(t, ok)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Err, "type mismatch")

	status := a.Status()
	assert.Equal(t, uint64(1), status.Stats.ValidationErrors)
	assert.Equal(t, uint64(1), status.Stats.FailedReads)
}

func TestAcquire_RetriesThenSucceeds(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(model.Descriptor{
		Code: "1.0.1.7.0.255", Name: "current_power", Unit: "W", Type: model.TypeFloat,
	}))

	attempts := 0
	src := fetchFunc(func(ctx context.Context, code string) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, ErrTransport
		}
		return 2500.5, nil
	})

	a := newTestAggregator(t, reg, src)
	a.cfg.RetryCount = 3

	set := a.ReadAll(context.Background())
	r, ok := set.Get("1.0.1.7.0.255")
	require.True(t, ok)
	assert.True(t, r.Valid)
	assert.Equal(t, 2500.5, r.Value)
	assert.Equal(t, 3, attempts)

	// retries are not failed reads when an attempt eventually lands.
	status := a.Status()
	assert.Equal(t, uint64(1), status.Stats.TotalReads)
	assert.Equal(t, uint64(0), status.Stats.FailedReads)
}

func TestAcquire_RetriesExhaustedCountsOneFailedRead(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(model.Descriptor{
		Code: "1.0.1.7.0.255", Name: "current_power", Unit: "W", Type: model.TypeFloat,
	}))

	attempts := 0
	src := fetchFunc(func(ctx context.Context, code string) (any, error) {
		attempts++
		return nil, ErrTransport
	})

	a := newTestAggregator(t, reg, src)
	a.cfg.RetryCount = 2

	set := a.ReadAll(context.Background())
	r := set.Readings[0]
	assert.False(t, r.Valid)
	assert.Contains(t, r.Err, "transport failure")
	assert.Equal(t, 3, attempts) // initial attempt plus two retries

	status := a.Status()
	assert.Equal(t, uint64(1), status.Stats.FailedReads)
	assert.Equal(t, uint64(0), status.Stats.ValidationErrors)
}

func TestAcquire_TimeoutIsFailedRead(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(model.Descriptor{
		Code: "1.0.1.7.0.255", Name: "current_power", Unit: "W", Type: model.TypeFloat,
	}))

	src := fetchFunc(func(ctx context.Context, code string) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	a := newTestAggregator(t, reg, src)
	a.cfg.Timeout = 10 * time.Millisecond

	set := a.ReadAll(context.Background())
	r := set.Readings[0]
	assert.False(t, r.Valid)
	assert.Contains(t, r.Err, "acquisition timeout")
}

func TestHealthStatus_Thresholds(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(model.Descriptor{
		Code: "1.0.1.7.0.255", Name: "current_power", Unit: "W", Type: model.TypeFloat,
	}))

	fail := false
	src := fetchFunc(func(ctx context.Context, code string) (any, error) {
		if fail {
			return nil, ErrTransport
		}
		return 100.0, nil
	})
	a := newTestAggregator(t, reg, src)

	// all good: healthy.
	for i := 0; i < 10; i++ {
		a.ReadAll(context.Background())
	}
	assert.Equal(t, model.Healthy, a.Status().Health)

	// push the failure ratio over the degraded threshold.
	fail = true
	for i := 0; i < 4; i++ {
		a.ReadAll(context.Background())
	}
	assert.Equal(t, model.Degraded, a.Status().Health)

	// keep failing until the ratio crosses the unhealthy threshold.
	for i := 0; i < 12; i++ {
		a.ReadAll(context.Background())
	}
	assert.Equal(t, model.Unhealthy, a.Status().Health)

	// recovery drains the window back to healthy.
	fail = false
	for i := 0; i < healthWindow; i++ {
		a.ReadAll(context.Background())
	}
	assert.Equal(t, model.Healthy, a.Status().Health)
}

func TestReset(t *testing.T) {
	reg := electricityRegistry(t)
	a := newTestAggregator(t, reg, nil)
	a.ReadAll(context.Background())
	require.NotZero(t, a.Status().Stats.TotalReads)

	a.Reset()
	status := a.Status()
	assert.Equal(t, model.SessionCounters{}, status.Stats)
	assert.Equal(t, model.Healthy, status.Health)
}

func TestStatusSnapshot(t *testing.T) {
	reg := electricityRegistry(t)
	a := newTestAggregator(t, reg, nil)

	status := a.Status()
	assert.Equal(t, "meter-test", status.DeviceID)
	assert.Equal(t, model.MeterElectricity, status.MeterType)
	assert.Equal(t, reg.Len(), status.RegisteredCodes)
	assert.Equal(t, time.Second, status.Timeout)
}

func TestParseRawData(t *testing.T) {
	raw := `
1.0.1.7.0.255:2500.5
1.0.0.0.0.255:meter-a
1.0.96.1.0.255:42

not a line
:10
`
	values := ParseRawData(raw)
	assert.Equal(t, 2500.5, values["1.0.1.7.0.255"])
	assert.Equal(t, "meter-a", values["1.0.0.0.0.255"])
	assert.Equal(t, int64(42), values["1.0.96.1.0.255"])
	assert.Len(t, values, 3)
}

func TestStaticSource(t *testing.T) {
	src := NewLineSource("1.0.1.7.0.255:850.2")

	v, err := src.Fetch(context.Background(), "1.0.1.7.0.255")
	require.NoError(t, err)
	assert.Equal(t, 850.2, v)

	_, err = src.Fetch(context.Background(), "1.0.21.7.0.255")
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestSampleSource_ValuesWithinRange(t *testing.T) {
	reg := electricityRegistry(t)
	a := newTestAggregator(t, reg, nil)

	set := a.ReadAll(context.Background())
	for _, r := range set.Readings {
		require.True(t, r.Valid, r.Code)
		d, _ := reg.Lookup(r.Code)
		if d.Type == model.TypeString {
			assert.IsType(t, "", r.Value, r.Code)
		}
	}
}
