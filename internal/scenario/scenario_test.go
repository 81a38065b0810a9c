package scenario

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"airport_sim/internal/airport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "order_of_checks.toml"))
	require.NoError(t, err)

	assert.Equal(t, "order of checks", sc.Name)
	assert.Equal(t, 1, sc.Capacity)
	assert.Nil(t, sc.ReleaseOnTakeOff)
	require.Len(t, sc.Steps, 9)
	assert.Equal(t, OutcomeOK, sc.Steps[3].Expect)
	require.NotNil(t, sc.Steps[1].Stormy)
	assert.True(t, *sc.Steps[1].Stormy)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.toml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "no steps",
			data:    `capacity = 2`,
			wantErr: "no steps",
		},
		{
			name: "unknown action",
			data: `[[step]]
action = "divert"
plane = "A"`,
			wantErr: "unknown action",
		},
		{
			name: "missing plane",
			data: `[[step]]
action = "land"`,
			wantErr: "plane is required",
		},
		{
			name: "unknown expectation",
			data: `[[step]]
action = "land"
plane = "A"
expect = "fog"`,
			wantErr: "unknown error kind",
		},
		{
			name: "unknown key",
			data: `capacty = 3
[[step]]
action = "land"
plane = "A"`,
			wantErr: "capacty",
		},
		{
			name: "negative capacity",
			data: `capacity = -1
[[step]]
action = "land"
plane = "A"`,
			wantErr: "capacity",
		},
		{
			name:    "bad toml",
			data:    `capacity = `,
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_Testdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.toml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			sc, err := Load(f)
			require.NoError(t, err)

			report, err := Run(sc)
			require.NoError(t, err)
			assert.Empty(t, report.Failed())
		})
	}
}

func TestRun_OrderOfChecks(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "order_of_checks.toml"))
	require.NoError(t, err)

	report, err := Run(sc)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Capacity)
	assert.Equal(t, []string{"B"}, report.OnApron)
}

func TestRun_FillToCapacity(t *testing.T) {
	var b strings.Builder
	b.WriteString("capacity = 3\n")
	for i := 0; i < 4; i++ {
		expect := OutcomeOK
		if i == 3 {
			expect = "capacity_exceeded"
		}
		fmt.Fprintf(&b, "[[step]]\naction = %q\nplane = \"P%d\"\nexpect = %q\n", ActionLand, i, expect)
	}

	sc, err := Parse(b.String())
	require.NoError(t, err)

	report, err := Run(sc)
	require.NoError(t, err)
	assert.Equal(t, []string{"P0", "P1", "P2"}, report.OnApron)
}

func TestRun_DefaultCapacity(t *testing.T) {
	sc, err := Parse(`[[step]]
action = "land"
plane = "A"`)
	require.NoError(t, err)

	report, err := Run(sc)
	require.NoError(t, err)
	assert.Equal(t, 20, report.Capacity)
}

func TestRun_Mismatch(t *testing.T) {
	sc, err := Parse(`stormy = true
[[step]]
action = "land"
plane = "A"

[[step]]
action = "take_off"
plane = "A"
expect = "stormy_weather"`)
	require.NoError(t, err)

	report, err := Run(sc)
	require.Error(t, err)

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Len(t, mismatch.Failed, 1)
	assert.Equal(t, 1, mismatch.Failed[0].Step)
	assert.Equal(t, "stormy_weather", mismatch.Failed[0].Got)
	assert.ErrorIs(t, mismatch.Failed[0].Err, airport.ErrStormyWeather)
	assert.Contains(t, err.Error(), "expected ok, got stormy_weather")

	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[1].Passed())
	assert.ErrorIs(t, report.Results[1].Err, airport.ErrStormyWeather)
}
