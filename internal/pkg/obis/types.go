package obis

type CodeType string

func (ct CodeType) String() string {
	return string(ct)
}

const (
	Identification CodeType = "identification"
	Energy         CodeType = "energy"
	Power          CodeType = "power"
	PowerFactor    CodeType = "power_factor"
	Frequency      CodeType = "frequency"
	Voltage        CodeType = "voltage"
	Current        CodeType = "current"
	Flow           CodeType = "flow"
	Volume         CodeType = "volume"
	Temperature    CodeType = "temperature"
	Pressure       CodeType = "pressure"
	Unknown        CodeType = "unknown"
)

type MediaClass string

func (mc MediaClass) String() string {
	return string(mc)
}

const (
	MediaElectricity MediaClass = "electricity"
	MediaGas         MediaClass = "gas"
	MediaWater       MediaClass = "water"
	MediaHeat        MediaClass = "heat"
	MediaCooling     MediaClass = "cooling"
	MediaUnknown     MediaClass = "unknown"
)

// MediaClasses maps the A field of an OBIS code to a utility type.
// Values outside this table still parse; they classify as unknown media.
var MediaClasses = map[uint64]MediaClass{
	1: MediaElectricity,
	2: MediaGas,
	3: MediaWater,
	4: MediaHeat,
	5: MediaCooling,
	6: MediaHeat,
	7: MediaGas,
	8: MediaWater,
	9: MediaWater,
}
