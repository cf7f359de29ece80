package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/poolwatch/internal/errors"
)

// initSchema initializes the database schema for telemetry data. Every field
// column is nullable: a point stores NULL for each absent field.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS telemetry (
            timestamp           INTEGER PRIMARY KEY,
            salt_ppm            REAL,
            cell_temperature    REAL,
            cell_voltage        REAL,
            water_temperature   REAL,
            air_temperature     REAL,
            pump_running        INTEGER,
            ambient_temperature REAL,
            ambient_humidity    REAL
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}
