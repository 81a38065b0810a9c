package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"airport_sim/internal/airport"
	"airport_sim/internal/models"
	"airport_sim/internal/scheduler"
)

// Stats counts instruction outcomes
type Stats struct {
	Landings         int
	TakeOffs         int
	CapacityExceeded int
	StormyWeather    int
	PlaneNotPresent  int
}

// Traffic issues one instruction per run: a plane on the apron is asked to
// take off, any other plane from the fleet is asked to land. It is the only
// caller of the airport.
type Traffic struct {
	airport  *airport.Airport
	fleet    []*models.Plane
	rng      *rand.Rand
	interval time.Duration

	mu    sync.Mutex
	stats Stats
}

func NewTraffic(a *airport.Airport, fleet []*models.Plane, interval time.Duration, seed uint64) *Traffic {
	return &Traffic{
		airport:  a,
		fleet:    fleet,
		rng:      rand.New(rand.NewPCG(seed, seed+1)),
		interval: interval,
	}
}

func (t *Traffic) Name() string {
	return "traffic"
}

func (t *Traffic) Interval() time.Duration {
	return t.interval
}

func (t *Traffic) Run(ctx context.Context) error {
	if len(t.fleet) == 0 {
		return fmt.Errorf("fleet is empty: %w", scheduler.ErrFatal)
	}

	plane := t.fleet[t.rng.IntN(len(t.fleet))]

	var (
		op  airport.Op
		err error
	)
	if t.airport.Contains(plane) {
		op = airport.OpTakeOff
		err = t.airport.InstructTakeOff(plane)
	} else {
		op = airport.OpLanding
		err = t.airport.InstructLanding(plane)
	}

	t.record(op, err)

	if err != nil {
		kind := airport.KindOf(err)
		if kind == airport.KindUnknown {
			return err
		}
		slog.Info("Instruction refused",
			"plane", plane.ID,
			"op", op,
			"reason", kind,
			"on_apron", t.airport.Len(),
			"capacity", t.airport.Capacity(),
		)
		return nil
	}

	slog.Info("Instruction completed",
		"plane", plane.ID,
		"op", op,
		"on_apron", t.airport.Len(),
		"capacity", t.airport.Capacity(),
	)
	return nil
}

// Stats returns a snapshot of the outcome counters
func (t *Traffic) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Traffic) record(op airport.Op, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch airport.KindOf(err) {
	case airport.KindCapacityExceeded:
		t.stats.CapacityExceeded++
	case airport.KindStormyWeather:
		t.stats.StormyWeather++
	case airport.KindPlaneNotPresent:
		t.stats.PlaneNotPresent++
	case airport.KindUnknown:
		if err != nil {
			return
		}
		if op == airport.OpTakeOff {
			t.stats.TakeOffs++
		} else {
			t.stats.Landings++
		}
	}
}
