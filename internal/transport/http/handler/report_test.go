package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange_EndCoversWholeDay(t *testing.T) {
	start, end, err := parseDateRange("2026-03-01", "2026-03-02")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)

	// an order created mid-morning on the end date must fall inside the range
	midMorning := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	assert.False(t, midMorning.After(end))

	// but nothing from the following day may leak in
	nextMidnight := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.True(t, nextMidnight.After(end))
}

func TestParseDateRange_SingleDay(t *testing.T) {
	start, end, err := parseDateRange("2026-07-15", "2026-07-15")
	require.NoError(t, err)

	evening := time.Date(2026, 7, 15, 23, 59, 59, 0, time.UTC)
	assert.False(t, start.After(evening))
	assert.False(t, evening.After(end))
}

func TestParseDateRange_EndBeforeStart(t *testing.T) {
	_, _, err := parseDateRange("2026-03-02", "2026-03-01")
	assert.Error(t, err)
}

func TestParseDateRange_BadInput(t *testing.T) {
	_, _, err := parseDateRange("03/01/2026", "2026-03-02")
	assert.Error(t, err)

	_, _, err = parseDateRange("2026-03-01", "tomorrow")
	assert.Error(t, err)
}
