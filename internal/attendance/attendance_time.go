package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseClock turns an "HH:MM" wall-clock string into minutes since midnight.
func parseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	return h*60 + m, nil
}

func formatClock(t time.Time) string {
	return t.Format("15:04")
}

// checkInStatus compares the actual check-in against the scheduled time plus
// grace. Arriving exactly at the grace boundary still counts as PRESENT.
func checkInStatus(actual time.Time, scheduled string, graceMinutes int) (string, error) {
	scheduledMin, err := parseClock(scheduled)
	if err != nil {
		return "", err
	}
	actualMin := actual.Hour()*60 + actual.Minute()
	if actualMin > scheduledMin+graceMinutes {
		return StatusLate, nil
	}
	return StatusPresent, nil
}

// workDuration renders the span between two "HH:MM" values as "Hh Mm",
// truncated to whole minutes.
func workDuration(checkIn, checkOut string) (string, error) {
	inMin, err := parseClock(checkIn)
	if err != nil {
		return "", err
	}
	outMin, err := parseClock(checkOut)
	if err != nil {
		return "", err
	}
	total := outMin - inMin
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dh %dm", total/60, total%60), nil
}
