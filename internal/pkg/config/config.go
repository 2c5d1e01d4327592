package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

type Config struct {
	Meter            *MeterConfig
	Mqtt             *MqttConfig
	DatabaseURL      string `env:"DATABASE_URL"`
	MigrationsFolder string `env:"MIGRATIONS_FOLDER"`
	ListenAddr       string `env:"LISTEN_ADDR" envDefault:"0.0.0.0:8000"`
	ApiTokenHash     string `env:"API_TOKEN_HASH"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"INFO"`
}

type MeterConfig struct {
	DeviceID     string          `env:"DEVICE_ID" envDefault:"meter-1"`
	MeterType    model.MeterType `env:"METER_TYPE" envDefault:"electricity"`
	Timeout      time.Duration   `env:"READ_TIMEOUT" envDefault:"5s"`
	RetryCount   int             `env:"RETRY_COUNT" envDefault:"3"`
	RetryDelay   time.Duration   `env:"RETRY_DELAY" envDefault:"1s"`
	PollInterval time.Duration   `env:"POLL_INTERVAL" envDefault:"10s"`
}

type MqttConfig struct {
	Host     string `env:"MQTT_HOST"`
	Username string `env:"MQTT_USER"`
	Password string `env:"MQTT_PASS"`
}

// FromEnv builds a config from environment variables; CLI flags layer
// on top of this in cmd.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Meter: &MeterConfig{},
		Mqtt:  &MqttConfig{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
