// Package sleep holds the pure sleep-cycle math: the age-based hours table,
// the 90-minute cycle recommendation sequences, and the 12-hour clock
// parsing and duration arithmetic the confirm flow depends on.
package sleep

import (
	"fmt"
	"math"
	"time"

	"github.com/yourname/sleepcycle/internal"
)

// CycleMinutes is the fixed length of one sleep cycle.
const CycleMinutes = 90

const (
	clock24 = "15:04"
	clock12 = "03:04 PM"
)

// Reference date for time-of-day arithmetic. Only the clock component of the
// result matters; the date exists so durations can roll over midnight.
var refDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// HoursRangeForAge returns the recommended [min, max] sleep hours for an age.
// toddlerMin is the configurable lower bound for ages 1-2 (11 or 12).
func HoursRangeForAge(age int, toddlerMin float64) (float64, float64) {
	switch {
	case age >= 1 && age <= 2:
		return toddlerMin, 14
	case age >= 3 && age <= 5:
		return 10, 13
	case age >= 6 && age <= 12:
		return 9, 12
	case age >= 13 && age <= 18:
		return 8, 10
	default:
		return 7, 9
	}
}

// Recommend computes the ordered candidate times for the given mode.
//
// In bedtime mode the anchor is when the user lies down; candidates are
// wake-up times at whole cycles after falling asleep, ascending. In alarm
// mode the anchor is the alarm; candidates are bedtimes counted back from it,
// also ascending (the longest night comes first). anchor is a 24-hour "HH:MM"
// string, output is 12-hour "07:30 AM" form.
func Recommend(mode internal.Mode, anchor string, fallAsleepMin, age int, toddlerMin float64) ([]string, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %q", internal.ErrInvalidInput, mode)
	}
	if age <= 0 {
		return nil, fmt.Errorf("%w: age must be a positive number", internal.ErrInvalidInput)
	}
	if fallAsleepMin < 0 {
		return nil, fmt.Errorf("%w: fall-asleep minutes must not be negative", internal.ErrInvalidInput)
	}
	anchorTime, err := clockOnRefDate(anchor)
	if err != nil {
		return nil, err
	}

	minHours, maxHours := HoursRangeForAge(age, toddlerMin)
	minCycles := int(math.Floor(minHours * 60 / CycleMinutes))
	maxCycles := int(math.Ceil(maxHours * 60 / CycleMinutes))

	var times []string
	if mode == internal.ModeBedtime {
		sleepStart := anchorTime.Add(time.Duration(fallAsleepMin) * time.Minute)
		for i := minCycles; i <= maxCycles; i++ {
			wake := sleepStart.Add(time.Duration(i*CycleMinutes) * time.Minute)
			times = append(times, wake.Format(clock12))
		}
	} else {
		for i := maxCycles; i >= minCycles; i-- {
			bed := anchorTime.Add(-time.Duration(i*CycleMinutes+fallAsleepMin) * time.Minute)
			times = append(times, bed.Format(clock12))
		}
	}
	return times, nil
}

// CentralIndex is the index of the emphasized recommendation in a candidate
// list of length n. Reproducible by definition: floor(n/2).
func CentralIndex(n int) int {
	return n / 2
}

func clockOnRefDate(hhmm string) (time.Time, error) {
	t, err := time.Parse(clock24, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: anchor time %q is not HH:MM", internal.ErrInvalidInput, hhmm)
	}
	return time.Date(refDate.Year(), refDate.Month(), refDate.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
