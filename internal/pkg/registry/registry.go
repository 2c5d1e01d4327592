package registry

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/obis"
	"github.com/anicoll/obis-integration/internal/pkg/validate"
)

var ErrBadDescriptor = errors.New("bad descriptor")

// Registry is the ordered table of code descriptors one aggregator reads
// from. Not safe for concurrent mutation; each aggregator owns its own.
type Registry struct {
	descriptors map[string]model.Descriptor
	order       []string
	names       map[string]string
	logger      *zap.Logger
}

func New() *Registry {
	return &Registry{
		descriptors: make(map[string]model.Descriptor),
		names:       make(map[string]string),
		logger:      zap.L(),
	}
}

// ForMeterType returns a registry pre-loaded with the default code set
// for the given meter type.
func ForMeterType(mt model.MeterType) (*Registry, error) {
	r := New()
	for _, d := range defaultCodes[mt] {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a descriptor, replacing any prior entry for the same
// code. Schema problems fail here so read passes never discover them.
func (r *Registry) Register(d model.Descriptor) error {
	if _, err := obis.Parse(d.Code); err != nil {
		return fmt.Errorf("%w: %s", ErrBadDescriptor, err)
	}
	if _, err := model.ParseValueType(d.Type.String()); err != nil {
		return fmt.Errorf("%w: code %s: %s", ErrBadDescriptor, d.Code, err)
	}
	if _, ranged := validate.RangeFor(d.Unit); ranged && !d.Type.Numeric() {
		return fmt.Errorf("%w: code %s: unit %s requires a numeric type, got %s", ErrBadDescriptor, d.Code, d.Unit, d.Type)
	}

	if prior, exists := r.descriptors[d.Code]; exists {
		// last write wins; documented replacement, not an error.
		delete(r.names, prior.Name)
		r.logger.Debug("replacing descriptor", zap.String("code", d.Code), zap.String("name", d.Name))
	} else {
		r.order = append(r.order, d.Code)
		r.logger.Debug("added descriptor", zap.String("code", d.Code), zap.String("name", d.Name))
	}
	r.descriptors[d.Code] = d
	if d.Name != "" {
		r.names[d.Name] = d.Code
	}
	return nil
}

func (r *Registry) RegisterAll(descriptors []model.Descriptor) error {
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Lookup(code string) (model.Descriptor, bool) {
	d, ok := r.descriptors[code]
	return d, ok
}

// LookupName resolves a descriptor by its registered name.
func (r *Registry) LookupName(name string) (model.Descriptor, bool) {
	code, ok := r.names[name]
	if !ok {
		return model.Descriptor{}, false
	}
	return r.descriptors[code], true
}

// All returns descriptors in insertion order, for deterministic
// iteration during a read pass.
func (r *Registry) All() []model.Descriptor {
	return lo.Map(r.order, func(code string, _ int) model.Descriptor {
		return r.descriptors[code]
	})
}

func (r *Registry) Len() int {
	return len(r.order)
}

var defaultCodes = map[model.MeterType][]model.Descriptor{
	model.MeterElectricity: {
		{Code: "1.0.0.0.0.255", Name: "meter_id", Description: "Meter ID", Type: model.TypeString},
		{Code: "1.0.1.7.0.255", Name: "current_power", Description: "Current Power", Unit: "W", Type: model.TypeFloat},
		{Code: "1.0.1.8.0.255", Name: "total_energy", Description: "Total Energy", Unit: "kWh", Type: model.TypeFloat},
		{Code: "1.0.21.7.0.255", Name: "l1_power", Description: "L1 Power", Unit: "W", Type: model.TypeFloat},
		{Code: "1.0.22.7.0.255", Name: "l2_power", Description: "L2 Power", Unit: "W", Type: model.TypeFloat},
		{Code: "1.0.23.7.0.255", Name: "l3_power", Description: "L3 Power", Unit: "W", Type: model.TypeFloat},
		{Code: "1.0.32.7.0.255", Name: "l1_voltage", Description: "L1 Voltage", Unit: "V", Type: model.TypeFloat},
		{Code: "1.0.52.7.0.255", Name: "l2_voltage", Description: "L2 Voltage", Unit: "V", Type: model.TypeFloat},
		{Code: "1.0.72.7.0.255", Name: "l3_voltage", Description: "L3 Voltage", Unit: "V", Type: model.TypeFloat},
		{Code: "1.0.31.7.0.255", Name: "l1_current", Description: "L1 Current", Unit: "A", Type: model.TypeFloat},
		{Code: "1.0.51.7.0.255", Name: "l2_current", Description: "L2 Current", Unit: "A", Type: model.TypeFloat},
		{Code: "1.0.71.7.0.255", Name: "l3_current", Description: "L3 Current", Unit: "A", Type: model.TypeFloat},
	},
	model.MeterGas: {
		{Code: "7.0.0.0.0.255", Name: "meter_id", Description: "Meter ID", Type: model.TypeString},
		{Code: "7.0.1.7.0.255", Name: "current_flow", Description: "Current Flow", Unit: "m³/h", Type: model.TypeFloat},
		{Code: "7.0.1.8.0.255", Name: "total_volume", Description: "Total Volume", Unit: "m³", Type: model.TypeFloat},
	},
	model.MeterWater: {
		{Code: "8.0.0.0.0.255", Name: "meter_id", Description: "Meter ID", Type: model.TypeString},
		{Code: "8.0.1.7.0.255", Name: "current_flow", Description: "Current Flow", Unit: "m³/h", Type: model.TypeFloat},
		{Code: "8.0.1.8.0.255", Name: "total_volume", Description: "Total Volume", Unit: "m³", Type: model.TypeFloat},
	},
	model.MeterHeat: {
		{Code: "6.0.0.0.0.255", Name: "meter_id", Description: "Meter ID", Type: model.TypeString},
		{Code: "6.0.1.8.0.255", Name: "total_energy", Description: "Total Energy", Unit: "kWh", Type: model.TypeFloat},
		{Code: "6.0.10.7.0.255", Name: "flow_temperature", Description: "Flow Temperature", Unit: "°C", Type: model.TypeFloat},
	},
	model.MeterCooling: {
		{Code: "5.0.0.0.0.255", Name: "meter_id", Description: "Meter ID", Type: model.TypeString},
		{Code: "5.0.1.8.0.255", Name: "total_energy", Description: "Total Energy", Unit: "kWh", Type: model.TypeFloat},
	},
}
