package model

// Meter identifies one physical meter for publishing sinks.
type Meter struct {
	ID        string
	MeterType MeterType
	Serial    string
}

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage is the Home Assistant MQTT discovery payload sent once
// per registered code.
type RegisterMessage struct {
	Tilda      string         `json:"~"`
	Name       string         `json:"name"`
	ID         string         `json:"unique_id"`
	StateTopic string         `json:"state_topic"`
	Unit       string         `json:"unit_of_measurement,omitempty"`
	Device     RegisterDevice `json:"device"`
}
