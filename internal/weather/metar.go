package weather

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"airport_sim/internal/models"
)

var (
	reWind    = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?(KT|MPS)$`)
	reWeather = regexp.MustCompile(`^(?:\+|-|VC)?(?:MI|PR|BC|DR|BL|SH|TS|FZ)?(?:DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*$`)
	reStation = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
)

// stormCodes are present weather codes that close the airport
var stormCodes = []string{"TS", "SQ", "FC"}

// ParseMETAR decodes the parts of a raw METAR that matter for storm detection.
// Trend and remark sections are ignored. gustThresholdKt of 0 disables the
// gust rule.
func ParseMETAR(raw string, gustThresholdKt int) (*models.Observation, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	for len(fields) > 0 && (fields[0] == "METAR" || fields[0] == "SPECI") {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty METAR")
	}
	if !reStation.MatchString(fields[0]) {
		return nil, fmt.Errorf("invalid station identifier: %q", fields[0])
	}

	obs := &models.Observation{
		Station: fields[0],
		Raw:     strings.TrimSpace(raw),
	}

	for _, f := range fields[1:] {
		if f == "RMK" || f == "TEMPO" || f == "BECMG" || f == "NOSIG" {
			break
		}

		if m := reWind.FindStringSubmatch(f); m != nil {
			speed, _ := strconv.Atoi(m[2])
			gust, _ := strconv.Atoi(m[3])
			if m[4] == "MPS" {
				speed = mpsToKnots(speed)
				gust = mpsToKnots(gust)
			}
			obs.WindKnots = speed
			obs.GustKnots = gust
			continue
		}

		if isWeatherGroup(f) {
			obs.Phenomena = append(obs.Phenomena, f)
		}
	}

	obs.Stormy = classify(obs, gustThresholdKt)
	return obs, nil
}

func isWeatherGroup(f string) bool {
	code := strings.TrimLeft(f, "+-")
	code = strings.TrimPrefix(code, "VC")
	return len(code) >= 2 && reWeather.MatchString(f)
}

func classify(obs *models.Observation, gustThresholdKt int) bool {
	for _, p := range obs.Phenomena {
		for _, code := range stormCodes {
			if strings.Contains(p, code) {
				return true
			}
		}
	}
	return gustThresholdKt > 0 && obs.GustKnots >= gustThresholdKt
}

func mpsToKnots(mps int) int {
	return int(math.Round(float64(mps) * 1.943844))
}
