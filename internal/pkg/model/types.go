package model

import (
	"errors"
	"fmt"
)

type MeterType string

func (mt MeterType) String() string {
	return string(mt)
}

const (
	MeterElectricity MeterType = "electricity"
	MeterGas         MeterType = "gas"
	MeterWater       MeterType = "water"
	MeterHeat        MeterType = "heat"
	MeterCooling     MeterType = "cooling"
)

var MeterTypes = []MeterType{
	MeterElectricity,
	MeterGas,
	MeterWater,
	MeterHeat,
	MeterCooling,
}

type NumericUnit string

const (
	NumericUnitVolt         NumericUnit = "V"
	NumericUnitAmp          NumericUnit = "A"
	NumericUnitWatt         NumericUnit = "W"
	NumericUnitKiloWattHour NumericUnit = "kWh"
	NumericUnitFlow         NumericUnit = "m³/h"
	NumericUnitCubicMetre   NumericUnit = "m³"
	NumericUnitHertz        NumericUnit = "Hz"
	NumericUnitDegreeC      NumericUnit = "°C"
	NumericUnitBar          NumericUnit = "bar"
	NumericUnitPercent      NumericUnit = "%"
)

var NumericUnits = []NumericUnit{
	NumericUnitVolt,
	NumericUnitAmp,
	NumericUnitWatt,
	NumericUnitKiloWattHour,
	NumericUnitFlow,
	NumericUnitCubicMetre,
	NumericUnitHertz,
	NumericUnitDegreeC,
	NumericUnitBar,
	NumericUnitPercent,
}

// ValueType is the closed set of declared types a descriptor may carry.
type ValueType string

func (vt ValueType) String() string {
	return string(vt)
}

const (
	TypeFloat  ValueType = "float"
	TypeInt    ValueType = "int"
	TypeString ValueType = "string"
	TypeBool   ValueType = "bool"
)

var ErrUnknownValueType = errors.New("unknown value type")

func ParseValueType(s string) (ValueType, error) {
	switch ValueType(s) {
	case TypeFloat, TypeInt, TypeString, TypeBool:
		return ValueType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownValueType, s)
}

func (vt ValueType) Numeric() bool {
	return vt == TypeFloat || vt == TypeInt
}
