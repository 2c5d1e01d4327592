package model

import "time"

// Descriptor binds an OBIS code to caller-supplied metadata. Immutable
// once registered; re-registering the same code replaces the entry.
type Descriptor struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Unit        string    `json:"unit"`
	Type        ValueType `json:"type"`
	ScaleFactor float64   `json:"scale_factor,omitempty"`
}

// Scale returns the effective scale factor, defaulting to 1.0.
func (d Descriptor) Scale() float64 {
	if d.ScaleFactor == 0 {
		return 1.0
	}
	return d.ScaleFactor
}

// Reading is one validated value for one code during one read pass.
type Reading struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	RawValue  any       `json:"raw_value,omitempty"`
	Value     any       `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
	Valid     bool      `json:"valid"`
	Err       string    `json:"error,omitempty"`
}

// ReadingSet is the ordered result of one read pass; order follows
// registry insertion order.
type ReadingSet struct {
	MeterID  string    `json:"meter_id"`
	Taken    time.Time `json:"taken"`
	Readings []Reading `json:"readings"`
}

func (rs ReadingSet) Get(code string) (Reading, bool) {
	for _, r := range rs.Readings {
		if r.Code == code {
			return r, true
		}
	}
	return Reading{}, false
}

func (rs ReadingSet) ValidCount() int {
	count := 0
	for _, r := range rs.Readings {
		if r.Valid {
			count++
		}
	}
	return count
}

type HealthStatus string

func (hs HealthStatus) String() string {
	return string(hs)
}

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
)

// SessionCounters accumulate across passes; they are never reset
// implicitly.
type SessionCounters struct {
	TotalReads       uint64 `json:"total_reads"`
	SuccessfulReads  uint64 `json:"successful_reads"`
	FailedReads      uint64 `json:"failed_reads"`
	ValidationErrors uint64 `json:"validation_errors"`
}

// Status is the snapshot returned by the aggregator's status query.
type Status struct {
	DeviceID        string          `json:"device_id"`
	MeterType       MeterType       `json:"meter_type"`
	Timeout         time.Duration   `json:"timeout"`
	RetryCount      int             `json:"retry_count"`
	RetryDelay      time.Duration   `json:"retry_delay"`
	RegisteredCodes int             `json:"registered_codes"`
	Health          HealthStatus    `json:"health_status"`
	LastHealthCheck time.Time       `json:"last_health_check"`
	Stats           SessionCounters `json:"stats"`
}
