package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"airport_sim/internal/database"
	"airport_sim/internal/models"
	"airport_sim/internal/weather"
)

// METARFetcher returns the latest decoded report for a station
type METARFetcher interface {
	FetchLatest(ctx context.Context, station string) (*models.Observation, error)
}

// WeatherRefresh keeps a station weather provider current and records every
// observation it receives
type WeatherRefresh struct {
	fetcher  METARFetcher
	station  *weather.Station
	repo     database.ObservationRepository
	interval time.Duration
}

func NewWeatherRefresh(fetcher METARFetcher, station *weather.Station, repo database.ObservationRepository, interval time.Duration) *WeatherRefresh {
	return &WeatherRefresh{
		fetcher:  fetcher,
		station:  station,
		repo:     repo,
		interval: interval,
	}
}

func (w *WeatherRefresh) Name() string {
	return "weather-refresh"
}

func (w *WeatherRefresh) Interval() time.Duration {
	return w.interval
}

// Prime seeds the station with the last stored observation so the airport
// does not start on the fallback answer after a restart
func (w *WeatherRefresh) Prime() error {
	obs, err := w.repo.Latest(w.station.Code())
	if err != nil {
		return fmt.Errorf("failed to load last observation: %w", err)
	}
	if obs != nil && w.station.Stale(obs) {
		slog.Info("Ignoring stale stored weather observation", "station", obs.Station, "observed_at", obs.ObservedAt)
		return nil
	}
	if obs != nil {
		w.station.Update(obs)
		slog.Info("Loaded last weather observation", "station", obs.Station, "stormy", obs.Stormy)
	}
	return nil
}

// Run fetches one report. On failure the previous observation stays in place.
func (w *WeatherRefresh) Run(ctx context.Context) error {
	obs, err := w.fetcher.FetchLatest(ctx, w.station.Code())
	if err != nil {
		return fmt.Errorf("failed to fetch METAR for %s: %w", w.station.Code(), err)
	}

	previous := w.station.Latest()
	w.station.Update(obs)

	if previous == nil || previous.Stormy != obs.Stormy {
		slog.Info("Weather changed",
			"station", obs.Station,
			"stormy", obs.Stormy,
			"phenomena", obs.Phenomena,
			"gust_kt", obs.GustKnots,
		)
	} else {
		slog.Debug("Weather refreshed", "station", obs.Station, "raw", obs.Raw)
	}

	if err := w.repo.InsertBatch([]*models.Observation{obs}); err != nil {
		return fmt.Errorf("failed to store observation: %w", err)
	}
	return nil
}
