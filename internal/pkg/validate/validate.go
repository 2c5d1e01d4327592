package validate

import (
	"errors"
	"fmt"
	"math"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

var (
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrRangeViolation = errors.New("range violation")
)

// Range holds inclusive legal bounds for one unit.
type Range struct {
	Min float64
	Max float64
}

var unitRanges = map[model.NumericUnit]Range{
	model.NumericUnitVolt:         {Min: 0, Max: 500},
	model.NumericUnitAmp:          {Min: 0, Max: 1000},
	model.NumericUnitWatt:         {Min: 0, Max: 100000},
	model.NumericUnitKiloWattHour: {Min: 0, Max: 999999999},
	model.NumericUnitFlow:         {Min: 0, Max: 1000},
	model.NumericUnitCubicMetre:   {Min: 0, Max: 999999999},
}

// RangeFor returns the legal bounds for a unit. Unitless and unknown
// units carry no bounds and skip the range check.
func RangeFor(unit string) (Range, bool) {
	r, ok := unitRanges[model.NumericUnit(unit)]
	return r, ok
}

// Value coerces raw to the descriptor's declared type, applies the scale
// factor for numeric types, and range-checks against the unit table.
// Out-of-range values are reported, never clamped.
func Value(d model.Descriptor, raw any) (any, error) {
	switch d.Type {
	case model.TypeFloat:
		f, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: code %s expected float, got %T", ErrTypeMismatch, d.Code, raw)
		}
		v := f * d.Scale()
		if err := checkRange(d, v); err != nil {
			return nil, err
		}
		return v, nil
	case model.TypeInt:
		i, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("%w: code %s expected int, got %T (%v)", ErrTypeMismatch, d.Code, raw, raw)
		}
		v := float64(i) * d.Scale()
		if err := checkRange(d, v); err != nil {
			return nil, err
		}
		if v == math.Trunc(v) {
			return int64(v), nil
		}
		return v, nil
	case model.TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: code %s expected string, got %T", ErrTypeMismatch, d.Code, raw)
		}
		return s, nil
	case model.TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: code %s expected bool, got %T", ErrTypeMismatch, d.Code, raw)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownValueType, d.Type)
}

func checkRange(d model.Descriptor, v float64) error {
	r, ok := RangeFor(d.Unit)
	if !ok {
		return nil
	}
	if v < r.Min || v > r.Max {
		return fmt.Errorf("%w: %v outside [%v, %v] for unit %s", ErrRangeViolation, v, r.Min, r.Max, d.Unit)
	}
	return nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		// accept integral floats, e.g. values decoded from JSON.
		if v == math.Trunc(v) {
			return int64(v), true
		}
	}
	return 0, false
}
