package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/obis-integration/internal/pkg/model"
)

func (db *Database) GetReadings(ctx context.Context, identifier, slug string, from, to *time.Time) (model.Records, error) {
	if from == nil || to == nil {
		from = func() *time.Time {
			t := time.Now().AddDate(0, 0, -2)
			return &t
		}()
		to = func() *time.Time {
			t := time.Now()
			return &t
		}()
	}
	const query = `
	SELECT id, time_stamp, unit_of_measurement, value, valid, error, identifier, slug
	FROM Reading
	WHERE identifier = $1 AND slug = $2 AND time_stamp BETWEEN $3 AND $4
	ORDER BY time_stamp DESC;
	`

	rows, err := db.conn.Query(ctx, query, identifier, slug, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (db *Database) GetLatestReadings(ctx context.Context) (model.Records, error) {
	const query = `
	SELECT DISTINCT ON (slug) id, time_stamp, unit_of_measurement, value, valid, error, identifier, slug
	FROM Reading
	ORDER BY slug, time_stamp DESC;
	`

	rows, err := db.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) (model.Records, error) {
	var records model.Records
	for rows.Next() {
		var record model.Record
		if err := rows.Scan(&record.Id, &record.TimeStamp, &record.Unit, &record.Value, &record.Valid, &record.Error, &record.Identifier, &record.Slug); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		if err == pgx.ErrNoRows {
			return records, nil
		}
		return nil, err
	}

	return records, nil
}
