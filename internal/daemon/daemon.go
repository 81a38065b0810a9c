package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"airport_sim/internal/airport"
	"airport_sim/internal/config"
	"airport_sim/internal/database"
	"airport_sim/internal/models"
	"airport_sim/internal/scheduler"
	"airport_sim/internal/tasks"
	"airport_sim/internal/weather"
)

// Daemon runs the traffic simulation and, for METAR weather, the refresh loop
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	scheduler *scheduler.Scheduler
	database  *database.DB
	airport   *airport.Airport
	traffic   *tasks.Traffic
	done      chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// New wires the daemon from configuration. Nothing runs until Start.
func New(cfg *config.Config) (*Daemon, error) {
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(ctx)

	fail := func(err error) (*Daemon, error) {
		cancel()
		db.Close()
		return nil, err
	}

	provider, err := newWeatherProvider(cfg.Weather, db, sched)
	if err != nil {
		return fail(err)
	}

	opts := []airport.Option{airport.WithCapacity(cfg.Airport.Capacity)}
	if !cfg.Airport.ReleaseOnTakeOff {
		opts = append(opts, airport.WithRetainOnTakeOff())
	}
	a, err := airport.New(provider, opts...)
	if err != nil {
		return fail(fmt.Errorf("failed to create airport: %w", err))
	}

	fleet, err := loadFleet(db.FleetRepository(), cfg.Traffic)
	if err != nil {
		return fail(err)
	}
	slog.Info("Fleet ready", "planes", len(fleet))

	traffic := tasks.NewTraffic(a, fleet, cfg.Traffic.Interval, cfg.Traffic.Seed)
	sched.AddTask(traffic)

	return &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: sched,
		database:  db,
		airport:   a,
		traffic:   traffic,
		done:      make(chan struct{}),
	}, nil
}

func newWeatherProvider(cfg config.WeatherConfig, db *database.DB, sched *scheduler.Scheduler) (weather.Provider, error) {
	switch cfg.Source {
	case config.WeatherFixed:
		return weather.NewFixed(cfg.Stormy), nil
	case config.WeatherRandom:
		return weather.NewRandom(cfg.StormChance, cfg.Seed), nil
	case config.WeatherScripted:
		return weather.NewScripted(cfg.Script...), nil
	case config.WeatherMETAR:
		station := weather.NewStation(cfg.Station, cfg.MaxAge, cfg.Stormy)
		client := weather.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, cfg.MaxRetries, cfg.GustThresholdKt)
		refresh := tasks.NewWeatherRefresh(client, station, db.ObservationRepository(), cfg.RefreshInterval)
		if err := refresh.Prime(); err != nil {
			return nil, err
		}
		sched.AddTask(refresh)
		return station, nil
	}
	return nil, fmt.Errorf("unknown weather source: %s", cfg.Source)
}

// loadFleet returns the registered planes, seeding the registry from CSV or
// with generated planes on first run
func loadFleet(repo database.FleetRepository, cfg config.TrafficConfig) ([]*models.Plane, error) {
	populated, err := repo.IsTablePopulated()
	if err != nil {
		return nil, err
	}

	if !populated {
		if cfg.FleetCSV != "" {
			slog.Info("Fleet table is empty, loading from CSV", "csv_path", cfg.FleetCSV)
			if err := repo.LoadFromCSV(cfg.FleetCSV, 500); err != nil {
				return nil, fmt.Errorf("failed to load fleet: %w", err)
			}
		} else {
			slog.Info("Fleet table is empty, generating planes", "count", cfg.FleetSize)
			planes := make([]*models.Plane, cfg.FleetSize)
			for i := range planes {
				planes[i] = models.NewPlane(fmt.Sprintf("SIM%03d", i+1))
			}
			if err := repo.InsertBatch(planes); err != nil {
				return nil, fmt.Errorf("failed to store generated fleet: %w", err)
			}
		}
	}

	fleet, err := repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list fleet: %w", err)
	}
	if len(fleet) == 0 {
		return nil, fmt.Errorf("fleet is empty")
	}
	return fleet, nil
}

// Airport exposes the simulated airport for inspection
func (d *Daemon) Airport() *airport.Airport {
	return d.airport
}

// Start launches the scheduled tasks; calling it twice or after Stop is a no-op
func (d *Daemon) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return nil
	}
	d.started = true

	slog.Info("Starting daemon", "capacity", d.airport.Capacity())

	d.scheduler.Start()

	go func() {
		select {
		case <-d.ctx.Done():
		case <-d.scheduler.Done():
			if d.ctx.Err() == nil {
				slog.Error("Scheduler stopped on its own, daemon is no longer running tasks")
			}
		}
		close(d.done)
	}()

	slog.Info("Daemon started successfully")
	return nil
}

// Stop gracefully stops the daemon. It is safe without a prior Start and
// when called more than once.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil
	}
	d.stopped = true

	slog.Info("Stopping daemon")
	d.cancel()
	if d.started {
		<-d.done
	}

	if err := d.scheduler.Stop(); err != nil {
		slog.Error("Scheduler stopped with error", "error", err)
	}

	stats := d.traffic.Stats()
	slog.Info("Traffic summary",
		"landings", stats.Landings,
		"take_offs", stats.TakeOffs,
		"capacity_exceeded", stats.CapacityExceeded,
		"stormy_weather", stats.StormyWeather,
		"plane_not_present", stats.PlaneNotPresent,
		"on_apron", d.airport.Len(),
	)

	if err := d.database.Close(); err != nil {
		slog.Error("Error closing database", "error", err)
	}

	slog.Info("Daemon stopped")
	return nil
}
