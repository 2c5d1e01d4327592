package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/obis-integration/cmd"
	"github.com/anicoll/obis-integration/pkg/hasher"
)

func main() {
	app := &cli.App{
		Name:   "obis-reader",
		Usage:  "reads, validates and publishes OBIS meter data",
		Action: cmd.ReaderCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "device-id",
				EnvVars: []string{"DEVICE_ID"},
				Value:   "meter-1",
			},
			&cli.StringFlag{
				Name:    "meter-type",
				EnvVars: []string{"METER_TYPE"},
				Value:   "electricity",
			},
			&cli.DurationFlag{
				Name:    "read-timeout",
				EnvVars: []string{"READ_TIMEOUT"},
				Value:   5 * time.Second,
			},
			&cli.IntFlag{
				Name:    "retry-count",
				EnvVars: []string{"RETRY_COUNT"},
				Value:   3,
			},
			&cli.DurationFlag{
				Name:    "retry-delay",
				EnvVars: []string{"RETRY_DELAY"},
				Value:   time.Second,
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   10 * time.Second,
			},
			&cli.StringFlag{
				Name:    "database-url",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "migrations-folder",
				EnvVars: []string{"MIGRATIONS_FOLDER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "api-token-hash",
				EnvVars: []string{"API_TOKEN_HASH"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate-token",
				Usage:  "generate an API token and its bcrypt hash for API_TOKEN_HASH",
				Action: generateToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func generateToken(_ *cli.Context) error {
	token, err := hasher.GenerateToken(32)
	if err != nil {
		return err
	}
	hash, err := hasher.HashToken([]byte(token))
	if err != nil {
		return err
	}
	fmt.Printf("token: %s\nhash:  %s\n", token, hash)
	return nil
}
