// Package scenario replays scripted landing and take-off instructions against
// a fresh airport and checks each outcome. Scenarios are TOML files:
//
//	name = "full airport in a storm"
//	capacity = 1
//
//	[[step]]
//	action = "land"
//	plane = "A"
//
//	[[step]]
//	action = "land"
//	plane = "B"
//	stormy = true
//	expect = "capacity_exceeded"
//
// A step's stormy value persists until another step changes it. expect
// defaults to "ok".
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"airport_sim/internal/airport"
)

const (
	ActionLand    = "land"
	ActionTakeOff = "take_off"

	OutcomeOK = "ok"
)

// Scenario is a decoded scenario file
type Scenario struct {
	Name             string `toml:"name"`
	Capacity         int    `toml:"capacity"`            // 0 means airport.DefaultCapacity
	ReleaseOnTakeOff *bool  `toml:"release_on_take_off"` // nil means release
	Stormy           bool   `toml:"stormy"`              // weather before the first step
	Steps            []Step `toml:"step"`
}

// Step is one instruction and its expected outcome
type Step struct {
	Action string `toml:"action"`
	Plane  string `toml:"plane"`
	Stormy *bool  `toml:"stormy"`
	Expect string `toml:"expect"`
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected so typos
// do not silently change a scenario.
func Parse(data string) (*Scenario, error) {
	var sc Scenario
	md, err := toml.Decode(data, &sc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown scenario keys: %s", strings.Join(keys, ", "))
	}

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Capacity < 0 {
		return airport.ErrInvalidCapacity
	}
	if len(sc.Steps) == 0 {
		return errors.New("scenario has no steps")
	}

	for i := range sc.Steps {
		step := &sc.Steps[i]
		if step.Action != ActionLand && step.Action != ActionTakeOff {
			return fmt.Errorf("step %d: unknown action %q (must be %s or %s)", i+1, step.Action, ActionLand, ActionTakeOff)
		}
		if step.Plane == "" {
			return fmt.Errorf("step %d: plane is required", i+1)
		}
		if step.Expect == "" {
			step.Expect = OutcomeOK
		}
		if step.Expect != OutcomeOK {
			if _, err := airport.ParseKind(step.Expect); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return nil
}
