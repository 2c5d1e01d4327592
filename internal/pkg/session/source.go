package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrTimeout   = errors.New("acquisition timeout")
	ErrTransport = errors.New("transport failure")
	ErrNoValue   = errors.New("no value for code")
)

// Source is the raw value provider capability. Implementations return an
// untyped value (numeric, string or boolean) or a failure signal; the
// aggregator applies timeout and retry around each call.
type Source interface {
	Fetch(ctx context.Context, code string) (any, error)
}

// StaticSource serves raw values from a fixed map, e.g. one parsed from
// a meter data dump.
type StaticSource struct {
	Values map[string]any
}

func (s StaticSource) Fetch(_ context.Context, code string) (any, error) {
	v, ok := s.Values[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoValue, code)
	}
	return v, nil
}

// ParseRawData turns "code:value" lines into a code to raw value map.
// Values parse as int, then float, then fall back to string.
func ParseRawData(raw string) map[string]any {
	values := make(map[string]any)
	for _, line := range strings.Split(raw, "\n") {
		code, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		code = strings.TrimSpace(code)
		value = strings.TrimSpace(value)
		if code == "" {
			continue
		}
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			values[code] = i
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			values[code] = f
		} else {
			values[code] = value
		}
	}
	return values
}

// NewLineSource builds a StaticSource from raw "code:value" meter text.
func NewLineSource(raw string) StaticSource {
	return StaticSource{Values: ParseRawData(raw)}
}
