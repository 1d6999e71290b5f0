package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampAcceptsUTCMarker(t *testing.T) {
	parsed, err := ParseTimestamp("2026-08-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), parsed)
}

func TestParseTimestampNormalizesOffsets(t *testing.T) {
	parsed, err := ParseTimestamp("2026-08-01T12:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), parsed)
}

func TestParseTimestampNaiveLayouts(t *testing.T) {
	parsed, err := ParseTimestamp("2026-08-01T10:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), parsed)

	parsed, err = ParseTimestamp("2026-08-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestWindowFromRange(t *testing.T) {
	window, err := WindowFromRange("2026-08-01T00:00:00Z", "2026-08-02T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, window.Start.Before(window.End))

	_, err = WindowFromRange("2026-08-02T00:00:00Z", "2026-08-01T00:00:00Z")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestWindowFromHours(t *testing.T) {
	window, err := WindowFromHours(24)
	require.NoError(t, err)
	assert.InDelta(t, 24*time.Hour, window.End.Sub(window.Start), float64(time.Second))

	_, err = WindowFromHours(0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
