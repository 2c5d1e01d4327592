package database

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5"
)

type Database struct {
	conn *pgx.Conn
	io.Closer
}

func NewDatabase(ctx context.Context, conn *pgx.Conn) *Database {
	initialise(ctx, conn)
	return &Database{
		conn: conn,
	}
}

func initialise(ctx context.Context, conn *pgx.Conn) {
	const createReadingTableSQL = `
CREATE TABLE IF NOT EXISTS Reading (
    id SERIAL PRIMARY KEY,
    time_stamp TIMESTAMP WITH TIME ZONE NOT NULL,
    unit_of_measurement TEXT NOT NULL,
    value TEXT NOT NULL,
    valid BOOLEAN NOT NULL DEFAULT TRUE,
    error TEXT,
    identifier TEXT NOT NULL,
    slug TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reading_identifier ON Reading (Identifier);
CREATE INDEX IF NOT EXISTS idx_reading_timestamp ON Reading (Time_Stamp);
CREATE TABLE IF NOT EXISTS Meter (
    id TEXT PRIMARY KEY,
    meter_type TEXT NOT NULL,
    serial TEXT
);
`
	if _, err := conn.Exec(ctx, createReadingTableSQL); err != nil {
		panic(err)
	}
}

func (db *Database) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close(context.Background())
}
