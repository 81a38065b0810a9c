package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"airport_sim/internal/airport"
	"airport_sim/internal/models"
	"airport_sim/internal/scheduler"
	"airport_sim/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFleet(n int) []*models.Plane {
	planes := make([]*models.Plane, n)
	for i := range planes {
		planes[i] = models.NewPlane(fmt.Sprintf("TEST%02d", i))
	}
	return planes
}

func TestTraffic_SinglePlaneAlternates(t *testing.T) {
	a, err := airport.New(weather.NewFixed(false))
	require.NoError(t, err)
	fleet := testFleet(1)

	task := NewTraffic(a, fleet, time.Second, 1)
	assert.Equal(t, "traffic", task.Name())
	assert.Equal(t, time.Second, task.Interval())

	require.NoError(t, task.Run(context.Background()))
	assert.True(t, a.Contains(fleet[0]))

	require.NoError(t, task.Run(context.Background()))
	assert.False(t, a.Contains(fleet[0]))

	assert.Equal(t, Stats{Landings: 1, TakeOffs: 1}, task.Stats())
}

func TestTraffic_StormyWeather(t *testing.T) {
	a, err := airport.New(weather.NewFixed(true))
	require.NoError(t, err)

	task := NewTraffic(a, testFleet(3), time.Second, 7)
	for i := 0; i < 5; i++ {
		require.NoError(t, task.Run(context.Background()))
	}

	assert.Equal(t, Stats{StormyWeather: 5}, task.Stats())
	assert.Equal(t, 0, a.Len())
}

func TestTraffic_CapacityExceeded(t *testing.T) {
	a, err := airport.New(weather.NewFixed(false), airport.WithCapacity(1))
	require.NoError(t, err)
	fleet := testFleet(2)
	require.NoError(t, a.InstructLanding(fleet[0]))

	// Only the plane that is not on the apron can be picked
	task := NewTraffic(a, fleet[1:], time.Second, 3)
	require.NoError(t, task.Run(context.Background()))

	assert.Equal(t, Stats{CapacityExceeded: 1}, task.Stats())
}

func TestTraffic_KeepsInvariant(t *testing.T) {
	a, err := airport.New(weather.NewRandom(0.2, 99), airport.WithCapacity(4))
	require.NoError(t, err)

	task := NewTraffic(a, testFleet(10), time.Second, 11)
	for i := 0; i < 500; i++ {
		require.NoError(t, task.Run(context.Background()))
		require.LessOrEqual(t, a.Len(), a.Capacity())
	}

	stats := task.Stats()
	assert.Equal(t, 500, stats.Landings+stats.TakeOffs+stats.CapacityExceeded+stats.StormyWeather+stats.PlaneNotPresent)
	assert.Zero(t, stats.PlaneNotPresent)
	assert.Positive(t, stats.Landings)
	assert.Positive(t, stats.StormyWeather)
}

func TestTraffic_EmptyFleet(t *testing.T) {
	a, err := airport.New(weather.NewFixed(false))
	require.NoError(t, err)

	task := NewTraffic(a, nil, time.Second, 1)
	assert.ErrorIs(t, task.Run(context.Background()), scheduler.ErrFatal)
}
