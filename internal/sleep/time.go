package sleep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/sleepcycle/internal"
)

// Parse12Hour converts a "07:30 AM" display string into 24-hour clock
// components. 12 AM maps to hour 0, 12 PM stays 12.
func Parse12Hour(s string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: time %q is not in 12-hour form", internal.ErrInvalidInput, s)
	}
	clock, meridiem := fields[0], strings.ToUpper(fields[1])
	if meridiem != "AM" && meridiem != "PM" {
		return 0, 0, fmt.Errorf("%w: time %q has no AM/PM marker", internal.ErrInvalidInput, s)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: time %q is not in 12-hour form", internal.ErrInvalidInput, s)
	}
	h, herr := strconv.Atoi(parts[0])
	m, merr := strconv.Atoi(parts[1])
	if herr != nil || merr != nil || h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: time %q is out of range", internal.ErrInvalidInput, s)
	}
	if meridiem == "PM" && h != 12 {
		h += 12
	}
	if meridiem == "AM" && h == 12 {
		h = 0
	}
	return h, m, nil
}

// DurationHours recomputes the actual sleep duration for a confirmed
// selection, in hours rounded to two decimals.
//
// Bedtime mode: the user sleeps from anchor+fallAsleep until the selected
// wake time. Alarm mode: the user sleeps from selected+fallAsleep until the
// anchor alarm. Either way an end at or before the start belongs to the next
// calendar day.
func DurationHours(mode internal.Mode, anchor string, fallAsleepMin int, selected string) (float64, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("%w: unknown mode %q", internal.ErrInvalidInput, mode)
	}
	anchorTime, err := clockOnRefDate(anchor)
	if err != nil {
		return 0, err
	}
	selHour, selMin, err := Parse12Hour(selected)
	if err != nil {
		return 0, err
	}
	selTime := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), selHour, selMin, 0, 0, time.UTC)
	fall := time.Duration(fallAsleepMin) * time.Minute

	var start, end time.Time
	if mode == internal.ModeBedtime {
		start = anchorTime.Add(fall)
		end = selTime
	} else {
		start = selTime.Add(fall)
		end = anchorTime
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	hours := end.Sub(start).Hours()
	hours = math.Round(hours*100) / 100
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, fmt.Errorf("%w: computed sleep duration %.2fh is not usable", internal.ErrInvalidInput, hours)
	}
	return hours, nil
}
