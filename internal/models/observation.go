package models

import "time"

// Observation is a single decoded weather report for a station
type Observation struct {
	Station    string    // ICAO station identifier (e.g., EGLL)
	ObservedAt time.Time // Report time, zero when the report carried no usable time group
	Raw        string    // Raw METAR text
	Phenomena  []string  // Present weather groups as reported (e.g., +TSRA, VCSH)
	WindKnots  int       // Mean wind speed in knots
	GustKnots  int       // Gust speed in knots, 0 when no gusts were reported
	Stormy     bool      // Whether the report blocks landings and take-offs
}
