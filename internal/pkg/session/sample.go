package session

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/validate"
)

type descriptorLookup interface {
	Lookup(code string) (model.Descriptor, bool)
}

// SampleSource is a deterministic offline stand-in for a live meter,
// used for testing and demo runs. It is an ordinary Source; the health
// model treats it exactly like a live transport.
type SampleSource struct {
	registry descriptorLookup
}

func NewSampleSource(registry descriptorLookup) SampleSource {
	return SampleSource{registry: registry}
}

func (s SampleSource) Fetch(_ context.Context, code string) (any, error) {
	d, ok := s.registry.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoValue, code)
	}

	h := seed(code, d.Type)
	switch d.Type {
	case model.TypeString:
		return fmt.Sprintf("%08d", h%100000000), nil
	case model.TypeBool:
		return h%2 == 0, nil
	case model.TypeInt:
		return int64(h % 1000), nil
	case model.TypeFloat:
		low, high := 0.0, 1000.0
		if r, ranged := validate.RangeFor(d.Unit); ranged {
			low, high = r.Min, r.Max
		}
		frac := float64(h%10000) / 10000.0
		// generate the pre-scale raw value so the scaled reading lands
		// inside the unit's legal range.
		return (low + frac*(high-low)) / d.Scale(), nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnknownValueType, d.Type)
}

func seed(code string, vt model.ValueType) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(code))
	_, _ = h.Write([]byte(vt))
	return h.Sum64()
}
