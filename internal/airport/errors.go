package airport

import (
	"errors"
	"fmt"

	"airport_sim/internal/models"
)

// Kind classifies why the airport refused an instruction
type Kind int

const (
	KindUnknown Kind = iota
	KindCapacityExceeded
	KindStormyWeather
	KindPlaneNotPresent
)

func (k Kind) String() string {
	switch k {
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindStormyWeather:
		return "stormy_weather"
	case KindPlaneNotPresent:
		return "plane_not_present"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, error) {
	switch s {
	case "capacity_exceeded":
		return KindCapacityExceeded, nil
	case "stormy_weather":
		return KindStormyWeather, nil
	case "plane_not_present":
		return KindPlaneNotPresent, nil
	}
	return KindUnknown, fmt.Errorf("unknown error kind: %q", s)
}

// Sentinel errors, one per Kind. Use errors.Is against these or KindOf to switch.
var (
	ErrCapacityExceeded = errors.New("airport is full")
	ErrStormyWeather    = errors.New("stormy weather")
	ErrPlaneNotPresent  = errors.New("plane is not at this airport")
)

// Construction errors
var (
	ErrInvalidCapacity = errors.New("capacity must be greater than 0")
	ErrNilWeather      = errors.New("weather provider is required")
	ErrNilPlane        = errors.New("plane is required")
)

// Op names the instruction that failed
type Op string

const (
	OpLanding Op = "land"
	OpTakeOff Op = "take off"
)

// Error is returned when an instruction is refused
type Error struct {
	Kind  Kind
	Op    Op
	Plane *models.Plane
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot %s %s: %s", e.Op, e.Plane, e.sentinel())
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindCapacityExceeded:
		return ErrCapacityExceeded
	case KindStormyWeather:
		return ErrStormyWeather
	case KindPlaneNotPresent:
		return ErrPlaneNotPresent
	}
	return nil
}

// Is lets errors.Is match an *Error against the sentinel for its kind
func (e *Error) Is(target error) bool {
	s := e.sentinel()
	return s != nil && s == target
}

// KindOf returns the kind of a refusal, or KindUnknown when err is not one
func KindOf(err error) Kind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	return KindUnknown
}
