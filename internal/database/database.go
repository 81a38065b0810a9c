package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB owns the SQLite connection and hands out repositories over it
type DB struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies the schema
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		// WAL lets the weather writer and fleet readers work side by side
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// ObservationRepository returns the weather observation store
func (d *DB) ObservationRepository() ObservationRepository {
	return NewObservationRepository(d.db)
}

// FleetRepository returns the plane registry
func (d *DB) FleetRepository() FleetRepository {
	return NewFleetRepository(d.db)
}

func (d *DB) initSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS weather_observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station TEXT NOT NULL,
			observed_at TIMESTAMP,
			raw TEXT NOT NULL,
			phenomena TEXT NOT NULL DEFAULT '',
			wind_kt INTEGER NOT NULL DEFAULT 0,
			gust_kt INTEGER NOT NULL DEFAULT 0,
			stormy BOOLEAN NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(station, raw)
		);`,
		`CREATE TABLE IF NOT EXISTS fleet (
			id TEXT PRIMARY KEY,
			icao24 TEXT,
			typecode TEXT,
			operator TEXT,
			registration TEXT
		);`,
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_weather_observations_station ON weather_observations(station)`,
		`CREATE INDEX IF NOT EXISTS idx_weather_observations_station_id ON weather_observations(station, id)`,
	}

	for _, table := range tables {
		if _, err := d.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
