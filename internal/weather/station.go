package weather

import (
	"sync"
	"time"

	"airport_sim/internal/models"
)

// Station answers from the latest METAR observation for one airport. Until an
// observation arrives, or once it is older than maxAge, it falls back to the
// configured default answer.
type Station struct {
	mu       sync.RWMutex
	latest   *models.Observation
	received time.Time

	code     string
	maxAge   time.Duration
	fallback bool
	now      func() time.Time
}

// NewStation creates a provider for the ICAO station code. A maxAge of 0
// never expires observations.
func NewStation(code string, maxAge time.Duration, fallback bool) *Station {
	return &Station{
		code:     code,
		maxAge:   maxAge,
		fallback: fallback,
		now:      time.Now,
	}
}

func (s *Station) Code() string {
	return s.code
}

func (s *Station) Stormy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil || s.stale(s.latest, s.received) {
		return s.fallback
	}
	return s.latest.Stormy
}

// Stale reports whether obs is already older than maxAge. Reports without an
// observation time are never stale here; Stormy ages them from receipt.
func (s *Station) Stale(obs *models.Observation) bool {
	if obs == nil || obs.ObservedAt.IsZero() {
		return false
	}
	return s.stale(obs, time.Time{})
}

// stale ages obs from its observation time, or from received when the report
// carried none
func (s *Station) stale(obs *models.Observation, received time.Time) bool {
	if s.maxAge <= 0 {
		return false
	}
	ref := obs.ObservedAt
	if ref.IsZero() {
		ref = received
	}
	return s.now().Sub(ref) > s.maxAge
}

// Update replaces the current observation
func (s *Station) Update(obs *models.Observation) {
	if obs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = obs
	s.received = s.now()
}

// Latest returns the current observation, or nil before the first update
func (s *Station) Latest() *models.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
