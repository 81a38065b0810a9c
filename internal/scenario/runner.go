package scenario

import (
	"fmt"
	"log/slog"
	"strings"

	"airport_sim/internal/airport"
	"airport_sim/internal/models"
	"airport_sim/internal/weather"
)

// Result is the outcome of one step
type Result struct {
	Step     int
	Action   string
	Plane    string
	Expected string
	Got      string
	Err      error
}

func (r Result) Passed() bool {
	return r.Expected == r.Got
}

// Report collects the results of a run
type Report struct {
	Name     string
	Results  []Result
	OnApron  []string // plane IDs on the apron after the last step, in landing order
	Capacity int
}

// Failed returns the steps whose outcome did not match
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// MismatchError lists the steps that did not produce the expected outcome
type MismatchError struct {
	Failed []Result
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = fmt.Sprintf("step %d (%s %s): expected %s, got %s", f.Step, f.Action, f.Plane, f.Expected, f.Got)
	}
	return fmt.Sprintf("%d step(s) failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

// Run replays sc against a new airport. It returns the full report and a
// *MismatchError when any step's outcome differs from its expectation.
func Run(sc *Scenario) (*Report, error) {
	wx := weather.NewFixed(sc.Stormy)

	var opts []airport.Option
	if sc.Capacity > 0 {
		opts = append(opts, airport.WithCapacity(sc.Capacity))
	}
	if sc.ReleaseOnTakeOff != nil && !*sc.ReleaseOnTakeOff {
		opts = append(opts, airport.WithRetainOnTakeOff())
	}

	a, err := airport.New(wx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create airport: %w", err)
	}

	// One Plane per ID so the airport sees the same identity across steps
	planes := make(map[string]*models.Plane)
	plane := func(id string) *models.Plane {
		p, ok := planes[id]
		if !ok {
			p = models.NewPlane(id)
			planes[id] = p
		}
		return p
	}

	report := &Report{Name: sc.Name, Capacity: a.Capacity()}
	for i, step := range sc.Steps {
		if step.Stormy != nil {
			wx.SetStormy(*step.Stormy)
		}

		var err error
		switch step.Action {
		case ActionLand:
			err = a.InstructLanding(plane(step.Plane))
		case ActionTakeOff:
			err = a.InstructTakeOff(plane(step.Plane))
		}

		res := Result{
			Step:     i + 1,
			Action:   step.Action,
			Plane:    step.Plane,
			Expected: step.Expect,
			Got:      outcome(err),
			Err:      err,
		}
		report.Results = append(report.Results, res)

		slog.Debug("Scenario step",
			"scenario", sc.Name,
			"step", res.Step,
			"action", res.Action,
			"plane", res.Plane,
			"expected", res.Expected,
			"got", res.Got,
		)
	}

	for _, p := range a.Planes() {
		report.OnApron = append(report.OnApron, p.ID)
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, &MismatchError{Failed: failed}
	}
	return report, nil
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind := airport.KindOf(err); kind != airport.KindUnknown {
		return kind.String()
	}
	return err.Error()
}
