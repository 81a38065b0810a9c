package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"airport_sim/internal/models"
)

type ObservationRepository interface {
	InsertBatch(obs []*models.Observation) error
	Latest(station string) (*models.Observation, error)
}

type observationRepository struct {
	db *sql.DB
}

func NewObservationRepository(db *sql.DB) ObservationRepository {
	return &observationRepository{db: db}
}

// InsertBatch stores observations in a single transaction. A report already
// stored for the same station is ignored.
func (r *observationRepository) InsertBatch(obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO weather_observations (
		station, observed_at, raw, phenomena, wind_kt, gust_kt, stormy
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		var observedAt any
		if !o.ObservedAt.IsZero() {
			observedAt = o.ObservedAt.UTC()
		}
		if _, err := stmt.Exec(
			o.Station,
			observedAt,
			o.Raw,
			strings.Join(o.Phenomena, " "),
			o.WindKnots,
			o.GustKnots,
			o.Stormy,
		); err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Latest returns the most recently stored observation for station, or nil
// when there is none
func (r *observationRepository) Latest(station string) (*models.Observation, error) {
	var (
		o          models.Observation
		observedAt sql.NullTime
		phenomena  string
	)

	err := r.db.QueryRow(`SELECT station, observed_at, raw, phenomena, wind_kt, gust_kt, stormy
		FROM weather_observations WHERE station = ? ORDER BY id DESC LIMIT 1`, station).
		Scan(&o.Station, &observedAt, &o.Raw, &phenomena, &o.WindKnots, &o.GustKnots, &o.Stormy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest observation: %w", err)
	}

	if observedAt.Valid {
		o.ObservedAt = observedAt.Time.In(time.UTC)
	}
	o.Phenomena = strings.Fields(phenomena)
	return &o, nil
}
