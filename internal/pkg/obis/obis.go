package obis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedCode = errors.New("malformed obis code")
	ErrInvalidField  = errors.New("invalid obis field")
	ErrFieldOverflow = errors.New("obis field overflow")
)

const fieldCount = 6

// Components holds the six fields of an OBIS code per IEC 62056-21,
// in A.B.C.D.E.F order.
type Components struct {
	Media           uint64
	Channel         uint64
	Measurement     uint64
	MeasurementType uint64
	Tariff          uint64
	Storage         uint64
}

// String returns the canonical dotted form, with leading zeros stripped.
func (c Components) String() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d.%d", c.Media, c.Channel, c.Measurement, c.MeasurementType, c.Tariff, c.Storage)
}

// MediaClass resolves the A field against the known media table.
func (c Components) MediaClass() MediaClass {
	if mc, ok := MediaClasses[c.Media]; ok {
		return mc
	}
	return MediaUnknown
}

// Parse splits an OBIS code into its six components. It is pure and
// deterministic, so results may be cached keyed by the code string.
func Parse(code string) (Components, error) {
	parts := strings.Split(code, ".")
	if len(parts) != fieldCount {
		return Components{}, fmt.Errorf("%w: %q has %d fields, want %d", ErrMalformedCode, code, len(parts), fieldCount)
	}

	fields := [fieldCount]uint64{}
	for i, part := range parts {
		if !numeric(part) {
			return Components{}, fmt.Errorf("%w: %q at index %d", ErrInvalidField, part, i)
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			// digits only, so the only remaining failure is range.
			return Components{}, fmt.Errorf("%w: %q at index %d", ErrFieldOverflow, part, i)
		}
		fields[i] = v
	}

	return Components{
		Media:           fields[0],
		Channel:         fields[1],
		Measurement:     fields[2],
		MeasurementType: fields[3],
		Tariff:          fields[4],
		Storage:         fields[5],
	}, nil
}

// IsValid reports whether code parses, independent of classification
// or registration.
func IsValid(code string) bool {
	_, err := Parse(code)
	return err == nil
}

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
