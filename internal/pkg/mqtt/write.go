package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/publisher"
)

var configuredSensors = map[string]struct{}{}

func (s *service) Write(ctx context.Context, data []map[string]any) error {
	for _, d := range data {
		if err := s.PublishReading(d); err != nil {
			return err
		}
	}
	return nil
}

// RegisterMeter publishes one Home Assistant discovery message per
// registered code, once per sensor.
func (s *service) RegisterMeter(meter *model.Meter, descriptors []model.Descriptor) error {
	identifier := fmt.Sprintf("%s_%s", meter.MeterType, meter.ID)

	for _, d := range descriptors {
		sensorSlug := publisher.Slug(d.Name)
		key := fmt.Sprintf("%s_%s", identifier, sensorSlug)
		if _, exists := configuredSensors[key]; exists {
			continue
		}

		topic := fmt.Sprintf("homeassistant/sensor/%s/%s/config", identifier, sensorSlug)
		payload, err := json.Marshal(registerMsg(meter, d, identifier, sensorSlug))
		if err != nil {
			return err
		}
		token := s.client.Publish(topic, 1, true, payload)
		if err := token.Error(); err != nil {
			return err
		}
		if res := token.WaitTimeout(time.Second * 5); res {
			configuredSensors[key] = struct{}{}
		}
	}
	return nil
}

func (s *service) PublishReading(data map[string]any) error {
	topic := fmt.Sprintf("homeassistant/sensor/%s/%s/state", data["identifier"], data["slug"].(string))

	payload := map[string]string{
		"value": data["value"].(string),
	}
	if unit, ok := data["unit_of_measurement"].(string); ok && unit != "" {
		payload["unit_of_measurement"] = unit
	}
	if valid, ok := data["valid"].(bool); ok && !valid {
		payload["error"] = fmt.Sprintf("%v", data["error"])
	}

	publishData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, publishData)
	res := token.WaitTimeout(time.Second * 10)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

func registerMsg(meter *model.Meter, d model.Descriptor, identifier, sensorSlug string) model.RegisterMessage {
	name := fmt.Sprintf("%s %s", meter.MeterType, meter.ID)

	return model.RegisterMessage{
		Tilda:      fmt.Sprintf("homeassistant/sensor/%s/%s", identifier, sensorSlug),
		Name:       d.Description,
		ID:         strings.ToLower(fmt.Sprintf("%s_%s", identifier, sensorSlug)),
		StateTopic: "~/state",
		Unit:       d.Unit,
		Device: model.RegisterDevice{
			Name:         name,
			Identifiers:  []string{identifier},
			Model:        meter.MeterType.String(),
			Manufacturer: "OBIS",
		},
	}
}
