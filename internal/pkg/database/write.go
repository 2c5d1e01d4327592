package database

import (
	"context"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

func (db *Database) Write(ctx context.Context, data []map[string]any) error {
	tx, err := db.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, record := range data {
		if _, err := tx.Exec(ctx, `
			INSERT INTO Reading (time_stamp, unit_of_measurement, value, valid, error, identifier, slug)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, record["timestamp"], record["unit_of_measurement"], record["value"], record["valid"], record["error"], record["identifier"], record["slug"]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Database) RegisterMeter(meter *model.Meter, _ []model.Descriptor) error {
	_, err := db.conn.Exec(context.Background(), `
		INSERT INTO Meter (id, meter_type, serial)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING;`, meter.ID, meter.MeterType.String(), meter.Serial)
	if err != nil {
		return err
	}

	return nil
}
