package airport

import (
	"slices"

	"airport_sim/internal/models"
	"airport_sim/internal/weather"
)

// DefaultCapacity is the apron size used when no capacity is configured
const DefaultCapacity = 20

// Airport gate-keeps landings and take-offs for a bounded apron of planes.
// It is not safe for concurrent use; one caller drives it at a time.
type Airport struct {
	capacity         int
	planes           []*models.Plane // landing order
	weather          weather.Provider
	releaseOnTakeOff bool
}

// Option configures an Airport at construction
type Option func(*Airport)

// WithCapacity sets the maximum number of planes on the apron
func WithCapacity(capacity int) Option {
	return func(a *Airport) {
		a.capacity = capacity
	}
}

// WithRetainOnTakeOff keeps a departed plane on the apron after a successful
// take-off, so capacity is never freed and the same plane can take off again.
func WithRetainOnTakeOff() Option {
	return func(a *Airport) {
		a.releaseOnTakeOff = false
	}
}

// New creates an airport that asks w about the weather on every instruction
func New(w weather.Provider, opts ...Option) (*Airport, error) {
	if w == nil {
		return nil, ErrNilWeather
	}

	a := &Airport{
		capacity:         DefaultCapacity,
		weather:          w,
		releaseOnTakeOff: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	a.planes = make([]*models.Plane, 0, a.capacity)

	return a, nil
}

// InstructLanding lands plane. A full apron is reported before stormy weather.
func (a *Airport) InstructLanding(plane *models.Plane) error {
	if plane == nil {
		return ErrNilPlane
	}
	if a.full() {
		return &Error{Kind: KindCapacityExceeded, Op: OpLanding, Plane: plane}
	}
	if a.stormy() {
		return &Error{Kind: KindStormyWeather, Op: OpLanding, Plane: plane}
	}

	a.planes = append(a.planes, plane)
	return nil
}

// InstructTakeOff clears plane for departure. Stormy weather is reported
// before an unknown plane.
func (a *Airport) InstructTakeOff(plane *models.Plane) error {
	if plane == nil {
		return ErrNilPlane
	}
	if a.stormy() {
		return &Error{Kind: KindStormyWeather, Op: OpTakeOff, Plane: plane}
	}
	if !a.atAirport(plane) {
		return &Error{Kind: KindPlaneNotPresent, Op: OpTakeOff, Plane: plane}
	}

	if a.releaseOnTakeOff {
		a.planes = slices.DeleteFunc(a.planes, func(p *models.Plane) bool { return p == plane })
	}
	return nil
}

// Capacity returns the apron size
func (a *Airport) Capacity() int {
	return a.capacity
}

// Len returns the number of planes on the apron
func (a *Airport) Len() int {
	return len(a.planes)
}

// Planes returns the planes on the apron in landing order
func (a *Airport) Planes() []*models.Plane {
	return slices.Clone(a.planes)
}

// Contains reports whether plane is on the apron
func (a *Airport) Contains(plane *models.Plane) bool {
	return a.atAirport(plane)
}

func (a *Airport) full() bool {
	return len(a.planes) >= a.capacity
}

// stormy is never cached; the provider may change between calls
func (a *Airport) stormy() bool {
	return a.weather.Stormy()
}

func (a *Airport) atAirport(plane *models.Plane) bool {
	return slices.Contains(a.planes, plane)
}
