package models

// Plane is an aircraft known to the simulation. The airport tracks planes by
// pointer identity, so two Plane values with equal fields are still different
// planes.
type Plane struct {
	ID           string // Registration or callsign used in logs and scenarios (e.g., G-EUPT)
	ICAO24       string // 6 hex digit ICAO address, empty when unknown
	TypeCode     string // ICAO aircraft type designator (e.g., A320)
	Operator     string // Operator name
	Registration string // Aircraft registration
}

// NewPlane returns a plane with only its identifier set
func NewPlane(id string) *Plane {
	return &Plane{ID: id, Registration: id}
}

func (p *Plane) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}
