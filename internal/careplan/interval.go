// Package careplan holds the scheduling core: it derives care cadences from
// free-text AI tips, applies the seasonal policy and advances recurring task
// chains. Everything here is a pure function of its inputs; the current time
// is always passed in explicitly.
package careplan

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"pflanzen-manager/internal/model"
)

// Interval is a cadence extracted from a care-tip sentence, e.g.
// "alle 7-10 Tage gießen" -> {Min: 7, Max: 10, Unit: days}.
type Interval struct {
	Min  int
	Max  int
	Unit model.Unit
}

var (
	rangePattern  = regexp.MustCompile(`(?i)alle\s+(\d+)[-\s]*(\d+)\s+(Tag|Tage|Woche|Wochen|Monat|Monate)`)
	singlePattern = regexp.MustCompile(`(?i)alle\s+(\d+)\s+(Tag|Tage|Woche|Wochen|Monat|Monate)`)
	numberPattern = regexp.MustCompile(`(?i)(\d+)\s+(Tag|Tage|Woche|Wochen|Monat|Monate)`)
)

// ParseInterval extracts a cadence from German care-tip text. The second
// return value is false when the text carries no recognizable interval; that
// is an expected absence of information, not an error.
func ParseInterval(text string) (Interval, bool) {
	if m := rangePattern.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return Interval{Min: lo, Max: hi, Unit: normalizeUnit(m[3])}, true
	}
	if m := singlePattern.FindStringSubmatch(text); m != nil {
		v, _ := strconv.Atoi(m[1])
		return Interval{Min: v, Max: v, Unit: normalizeUnit(m[2])}, true
	}
	if m := numberPattern.FindStringSubmatch(text); m != nil {
		v, _ := strconv.Atoi(m[1])
		return Interval{Min: v, Max: v, Unit: normalizeUnit(m[2])}, true
	}
	return Interval{}, false
}

func normalizeUnit(raw string) model.Unit {
	switch strings.ToLower(raw) {
	case "tag", "tage":
		return model.UnitDays
	case "woche", "wochen":
		return model.UnitWeeks
	case "monat", "monate":
		return model.UnitMonths
	}
	// Unknown unit text counts as days.
	return model.UnitDays
}

const day = 24 * time.Hour

// Duration converts an interval value in the given unit into an absolute
// duration. A month is a fixed 30 days: the schedule drifts against the
// calendar on purpose so that the stored base interval stays meaningful.
func Duration(value int, unit model.Unit) time.Duration {
	switch unit {
	case model.UnitWeeks:
		return time.Duration(value) * 7 * day
	case model.UnitMonths:
		return time.Duration(value) * 30 * day
	default:
		return time.Duration(value) * day
	}
}
