package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	sensors              sync.Map
)

type publisher interface {
	// Write persists or forwards one batch of reading payloads.
	Write(ctx context.Context, data []map[string]any) error
	RegisterMeter(meter *model.Meter, descriptors []model.Descriptor) error
}

func RegisterPublisher(name string, p publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = p
	return nil
}

// PublishReadings fans one reading-set out to every registered sink.
// Valid readings with an unchanged value are suppressed; invalid
// readings always go out so sinks see the failure.
func PublishReadings(ctx context.Context, meter model.Meter, set model.ReadingSet) error {
	identifier := fmt.Sprintf("%s_%s", meter.MeterType, meter.ID)
	count := 0
	data := make([]map[string]any, 0, len(set.Readings))

	for _, reading := range set.Readings {
		sensorSlug := Slug(reading.Name)
		val := fmt.Sprintf("%v", reading.Value)
		if !reading.Valid {
			val = ""
		}

		if reading.Valid && !shouldUpdate(identifier, sensorSlug, val) {
			continue
		}
		count++
		payload := map[string]any{
			"value":               val,
			"slug":                sensorSlug,
			"timestamp":           reading.Timestamp,
			"identifier":          identifier,
			"unit_of_measurement": reading.Unit,
			"valid":               reading.Valid,
		}
		if reading.Err != "" {
			payload["error"] = reading.Err
		}
		data = append(data, payload)
	}

	for name, p := range registeredPublishers {
		if err := p.Write(ctx, data); err != nil {
			zap.L().Error("failed to publish readings", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("published readings", zap.Int("count", count), zap.String("publisher", name))
	}
	return nil
}

// RegisterMeter announces the meter and its registered codes to every
// sink, e.g. for MQTT discovery or a device row.
func RegisterMeter(meter *model.Meter, descriptors []model.Descriptor) error {
	for name, p := range registeredPublishers {
		if err := p.RegisterMeter(meter, descriptors); err != nil {
			zap.L().Error("failed to register meter", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered meter", zap.String("meter", meter.ID), zap.String("publisher", name))
	}
	return nil
}

// Slug normalizes a descriptor name to a sensor slug.
func Slug(name string) string {
	return strings.Replace(slug.Make(name), "-", "_", -1)
}

func shouldUpdate(identifier, sensorSlug, newValue string) bool {
	key := fmt.Sprintf("%s_%s", identifier, sensorSlug)
	oldValue, exists := sensors.Load(key)
	if exists && strings.EqualFold(newValue, oldValue.(string)) {
		return false
	}
	if !exists {
		zap.L().Info("configured sensor:", zap.String("meter", identifier), zap.String("sensor", sensorSlug), zap.String("value", newValue))
	}
	sensors.Store(key, newValue)
	return true
}
