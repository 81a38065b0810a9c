package weather

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	f := NewFixed(false)
	assert.False(t, f.Stormy())

	f.SetStormy(true)
	assert.True(t, f.Stormy())
	assert.True(t, f.Stormy())
}

func TestFixed_ConcurrentUpdates(t *testing.T) {
	f := NewFixed(false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(stormy bool) {
			defer wg.Done()
			f.SetStormy(stormy)
			_ = f.Stormy()
		}(i%2 == 0)
	}
	wg.Wait()
}

func TestRandom_Bounds(t *testing.T) {
	never := NewRandom(0, 1)
	always := NewRandom(1, 1)

	for i := 0; i < 100; i++ {
		assert.False(t, never.Stormy())
		assert.True(t, always.Stormy())
	}
}

func TestRandom_Deterministic(t *testing.T) {
	a := NewRandom(0.3, 42)
	b := NewRandom(0.3, 42)

	stormy := 0
	for i := 0; i < 1000; i++ {
		got := a.Stormy()
		assert.Equal(t, got, b.Stormy())
		if got {
			stormy++
		}
	}

	// Loose bounds around the expected 300
	assert.Greater(t, stormy, 200)
	assert.Less(t, stormy, 400)
}

func TestScripted(t *testing.T) {
	s := NewScripted(false, true, true)

	assert.False(t, s.Stormy())
	assert.True(t, s.Stormy())
	assert.True(t, s.Stormy())
	assert.False(t, s.Stormy(), "script should start over")
	assert.Equal(t, 4, s.Calls())
}

func TestScripted_Empty(t *testing.T) {
	s := NewScripted()

	assert.False(t, s.Stormy())
	assert.Equal(t, 1, s.Calls())
}
