package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"codeberg.org/mutker/poolwatch/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	if cfg.DBPath == "" {
		return nil, errors.New().New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, point *Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO telemetry (
            timestamp, salt_ppm, cell_temperature, cell_voltage,
            water_temperature, air_temperature, pump_running,
            ambient_temperature, ambient_humidity
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            salt_ppm = excluded.salt_ppm,
            cell_temperature = excluded.cell_temperature,
            cell_voltage = excluded.cell_voltage,
            water_temperature = excluded.water_temperature,
            air_temperature = excluded.air_temperature,
            pump_running = excluded.pump_running,
            ambient_temperature = excluded.ambient_temperature,
            ambient_humidity = excluded.ambient_humidity
    `,
		point.Timestamp.Unix(),
		nullFloat(point.SaltPPM),
		nullFloat(point.CellTemperature),
		nullFloat(point.CellVoltage),
		nullFloat(point.WaterTemperature),
		nullFloat(point.AirTemperature),
		nullBool(point.PumpRunning),
		nullFloat(point.AmbientTemperature),
		nullFloat(point.AmbientHumidity),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) QueryRange(ctx context.Context, since time.Time, limit int) ([]Point, error) {
	query := `
        SELECT timestamp, salt_ppm, cell_temperature, cell_voltage,
               water_temperature, air_temperature, pump_running,
               ambient_temperature, ambient_humidity
        FROM telemetry
        WHERE timestamp >= ?
        ORDER BY timestamp ASC
    `
	args := []any{since.Unix()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			ts                                                  int64
			salt, cellTemp, cellVolt, water, air, ambTemp, ambH sql.NullFloat64
			pump                                                sql.NullBool
		)
		if err := rows.Scan(&ts, &salt, &cellTemp, &cellVolt, &water, &air, &pump, &ambTemp, &ambH); err != nil {
			return nil, errors.New().Wrap(ErrStorageAccess, err)
		}

		point := Point{Timestamp: time.Unix(ts, 0).UTC()}
		point.SaltPPM = fromNullFloat(salt)
		point.CellTemperature = fromNullFloat(cellTemp)
		point.CellVoltage = fromNullFloat(cellVolt)
		point.WaterTemperature = fromNullFloat(water)
		point.AirTemperature = fromNullFloat(air)
		point.PumpRunning = fromNullBool(pump)
		point.AmbientTemperature = fromNullFloat(ambTemp)
		point.AmbientHumidity = fromNullFloat(ambH)

		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	return points, nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromNullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
