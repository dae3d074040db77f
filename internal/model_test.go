package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeAt(t *testing.T) {
	u := &User{DOB: "1990-06-15"}

	age, err := u.AgeAt(time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 34, age, "day before the birthday")

	age, err = u.AgeAt(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 35, age, "on the birthday")

	// Same dob, same day: always the same age.
	again, err := u.AgeAt(time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, age, again)
}

func TestAgeAt_BadDOB(t *testing.T) {
	u := &User{DOB: "June 1990"}
	_, err := u.AgeAt(time.Now())
	assert.Error(t, err)
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeBedtime.Valid())
	assert.True(t, ModeAlarm.Valid())
	assert.False(t, Mode("nap").Valid())
	assert.False(t, Mode("").Valid())
}
