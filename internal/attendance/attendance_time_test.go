package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clockAt(hour, minute int) time.Time {
	return time.Date(2024, 7, 1, hour, minute, 0, 0, time.UTC)
}

func TestCheckInStatus_GraceBoundary(t *testing.T) {
	// Schedule 08:00 with 15 minutes grace: 08:15 is still on time,
	// 08:16 is late.
	status, err := checkInStatus(clockAt(8, 15), "08:00", 15)
	assert.NoError(t, err)
	assert.Equal(t, StatusPresent, status)

	status, err = checkInStatus(clockAt(8, 16), "08:00", 15)
	assert.NoError(t, err)
	assert.Equal(t, StatusLate, status)
}

func TestCheckInStatus_EarlyAndLate(t *testing.T) {
	status, err := checkInStatus(clockAt(7, 30), "08:00", 15)
	assert.NoError(t, err)
	assert.Equal(t, StatusPresent, status)

	status, err = checkInStatus(clockAt(11, 0), "08:00", 15)
	assert.NoError(t, err)
	assert.Equal(t, StatusLate, status)
}

func TestCheckInStatus_ZeroGrace(t *testing.T) {
	status, err := checkInStatus(clockAt(9, 0), "09:00", 0)
	assert.NoError(t, err)
	assert.Equal(t, StatusPresent, status)

	status, err = checkInStatus(clockAt(9, 1), "09:00", 0)
	assert.NoError(t, err)
	assert.Equal(t, StatusLate, status)
}

func TestCheckInStatus_InvalidSchedule(t *testing.T) {
	_, err := checkInStatus(clockAt(8, 0), "8am", 15)
	assert.Error(t, err)

	_, err = checkInStatus(clockAt(8, 0), "25:00", 15)
	assert.Error(t, err)
}

func TestWorkDuration(t *testing.T) {
	d, err := workDuration("08:03", "17:10")
	assert.NoError(t, err)
	assert.Equal(t, "9h 7m", d)

	d, err = workDuration("09:00", "09:45")
	assert.NoError(t, err)
	assert.Equal(t, "0h 45m", d)

	// Check-out before check-in clamps to zero instead of going negative.
	d, err = workDuration("17:00", "08:00")
	assert.NoError(t, err)
	assert.Equal(t, "0h 0m", d)
}

func TestParseClock(t *testing.T) {
	min, err := parseClock("08:15")
	assert.NoError(t, err)
	assert.Equal(t, 495, min)

	_, err = parseClock("08:60")
	assert.Error(t, err)
	_, err = parseClock("")
	assert.Error(t, err)
}
