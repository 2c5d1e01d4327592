package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/obis-integration/internal/pkg/config"
	"github.com/anicoll/obis-integration/internal/pkg/database"
	"github.com/anicoll/obis-integration/internal/pkg/database/migration"
	"github.com/anicoll/obis-integration/internal/pkg/model"
	"github.com/anicoll/obis-integration/internal/pkg/mqtt"
	"github.com/anicoll/obis-integration/internal/pkg/publisher"
	"github.com/anicoll/obis-integration/internal/pkg/registry"
	"github.com/anicoll/obis-integration/internal/pkg/server"
	"github.com/anicoll/obis-integration/internal/pkg/session"
)

func ReaderCommand(ctx *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	// flags layer over the environment.
	if ctx.IsSet("device-id") {
		cfg.Meter.DeviceID = ctx.String("device-id")
	}
	if ctx.IsSet("meter-type") {
		cfg.Meter.MeterType = model.MeterType(ctx.String("meter-type"))
	}
	if ctx.IsSet("read-timeout") {
		cfg.Meter.Timeout = ctx.Duration("read-timeout")
	}
	if ctx.IsSet("retry-count") {
		cfg.Meter.RetryCount = ctx.Int("retry-count")
	}
	if ctx.IsSet("retry-delay") {
		cfg.Meter.RetryDelay = ctx.Duration("retry-delay")
	}
	if ctx.IsSet("poll-interval") {
		cfg.Meter.PollInterval = ctx.Duration("poll-interval")
	}
	if ctx.IsSet("database-url") {
		cfg.DatabaseURL = ctx.String("database-url")
	}
	if ctx.IsSet("migrations-folder") {
		cfg.MigrationsFolder = ctx.String("migrations-folder")
	}
	if ctx.IsSet("mqtt-host") {
		cfg.Mqtt.Host = ctx.String("mqtt-host")
	}
	if ctx.IsSet("mqtt-user") {
		cfg.Mqtt.Username = ctx.String("mqtt-user")
	}
	if ctx.IsSet("mqtt-pass") {
		cfg.Mqtt.Password = ctx.String("mqtt-pass")
	}
	if ctx.IsSet("api-token-hash") {
		cfg.ApiTokenHash = ctx.String("api-token-hash")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	return run(ctx.Context, cfg, nil, logger, nil)
}

// run wires the service. A nil svc is built from cfg; a non-nil svc and
// db let tests inject fakes.
func run(ctx context.Context, cfg *config.Config, svc readerService, logger *zap.Logger, db *database.Database) error {
	eg, ctx := errgroup.WithContext(ctx)

	if db == nil && cfg.DatabaseURL != "" {
		if cfg.MigrationsFolder != "" {
			if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
				return err
			}
		}
		conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		db = database.NewDatabase(ctx, conn)
		defer db.Close()
		if err := publisher.RegisterPublisher("postgres", db); err != nil {
			return err
		}
	}

	if cfg.Mqtt.Host != "" {
		opts := paho_mqtt.NewClientOptions().
			AddBroker(cfg.Mqtt.Host).
			SetUsername(cfg.Mqtt.Username).
			SetPassword(cfg.Mqtt.Password).
			SetClientID("obis-reader-" + cfg.Meter.DeviceID)
		mqttSvc := mqtt.New(paho_mqtt.NewClient(opts))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	meter := model.Meter{ID: cfg.Meter.DeviceID, MeterType: cfg.Meter.MeterType}
	if svc == nil {
		reg, err := registry.ForMeterType(cfg.Meter.MeterType)
		if err != nil {
			return err
		}
		agg := session.New(cfg.Meter, reg, nil)
		svc = newReader(agg, meter)
		if err := publisher.RegisterMeter(&meter, reg.All()); err != nil {
			return err
		}
	}

	if db != nil {
		eg.Go(func() error {
			return cronDbCleanup(ctx, db)
		})
	}

	eg.Go(func() error {
		ticker := time.NewTicker(cfg.Meter.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				set := svc.Read(ctx)
				logger.Info("read pass",
					zap.String("device_id", set.MeterID),
					zap.Int("readings", len(set.Readings)),
					zap.Int("valid", set.ValidCount()),
					zap.String("health", svc.Status().Health.String()),
				)
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	eg.Go(func() error {
		handler := server.New(svc, nil)
		if db != nil {
			handler = server.New(svc, db)
		}
		srv := &http.Server{
			Handler:      server.LoggingMiddleware(server.AuthMiddleware(cfg.ApiTokenHash)(handler.Router())),
			Addr:         cfg.ListenAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return eg.Wait()
}

func buildLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = parsed
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func cronDbCleanup(ctx context.Context, db *database.Database) error {
	if err := db.Cleanup(ctx); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := db.Cleanup(context.Background()); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			return
		}
		zap.L().Info("cleaned up old readings")
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return ctx.Err()
}
