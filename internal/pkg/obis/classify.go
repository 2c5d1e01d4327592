package obis

import "github.com/samber/lo"

// energyType is the D field value marking an accumulated register,
// e.g. 1.0.1.8.0.255 (total active energy).
const energyType uint64 = 8

type band struct {
	measurements []uint64
	codeType     CodeType
}

var electricityBands = []band{
	{measurements: []uint64{1, 2, 15, 16, 21, 22, 23}, codeType: Power},
	{measurements: []uint64{32, 52, 72}, codeType: Voltage},
	{measurements: []uint64{31, 51, 71}, codeType: Current},
	{measurements: []uint64{13, 33, 53, 73}, codeType: PowerFactor},
	{measurements: []uint64{14, 34, 54, 74}, codeType: Frequency},
}

var gasWaterBands = []band{
	{measurements: []uint64{41}, codeType: Temperature},
	{measurements: []uint64{42}, codeType: Pressure},
	{measurements: []uint64{1, 2, 3}, codeType: Flow},
}

var heatBands = []band{
	{measurements: []uint64{10, 11, 12}, codeType: Temperature},
	{measurements: []uint64{1, 2, 3}, codeType: Flow},
}

// Classify maps parsed components to a semantic category. It is advisory
// metadata only; a well-formed code is never rejected for classifying
// as Unknown.
func (c Components) Classify() CodeType {
	if c.Measurement == 0 {
		return Identification
	}

	switch c.MediaClass() {
	case MediaElectricity:
		if c.MeasurementType == energyType {
			return Energy
		}
		return matchBand(electricityBands, c.Measurement)
	case MediaGas, MediaWater:
		if c.MeasurementType == energyType {
			return Volume
		}
		return matchBand(gasWaterBands, c.Measurement)
	case MediaHeat, MediaCooling:
		if c.MeasurementType == energyType {
			return Energy
		}
		return matchBand(heatBands, c.Measurement)
	}
	return Unknown
}

func matchBand(bands []band, measurement uint64) CodeType {
	b, found := lo.Find(bands, func(b band) bool {
		return lo.Contains(b.measurements, measurement)
	})
	if !found {
		return Unknown
	}
	return b.codeType
}
