package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupDeletesOnlyOldReadings(t *testing.T) {
	env := newTestEnv(t)
	env.createDevice(t, "LR1")

	now := time.Now().UTC()
	// 4 readings older than the 30-day cutoff, 3 newer
	for i := 0; i < 4; i++ {
		env.createReading(t, "LR1", "CT1", 1.0, now.AddDate(0, 0, -40-i))
	}
	for i := 0; i < 3; i++ {
		env.createReading(t, "LR1", "CT1", 2.0, now.AddDate(0, 0, -i))
	}

	retention := NewRetentionService(env.readings)

	result, err := retention.Cleanup(30)
	require.NoError(t, err)
	assert.EqualValues(t, 4, result.Deleted)
	assert.NotEmpty(t, result.CutoffDate)

	remaining, err := env.readings.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, remaining)

	// immediate re-run finds nothing left to delete
	rerun, err := retention.Cleanup(30)
	require.NoError(t, err)
	assert.Zero(t, rerun.Deleted)
}

func TestCleanupRejectsZeroDays(t *testing.T) {
	env := newTestEnv(t)
	retention := NewRetentionService(env.readings)

	for _, days := range []int{0, -5} {
		_, err := retention.Cleanup(days)
		assert.ErrorIs(t, err, ErrInvalidParameter, "days=%d", days)
	}
}

func TestRetentionStats(t *testing.T) {
	env := newTestEnv(t)
	retention := NewRetentionService(env.readings)

	stats, err := retention.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReadings)
	assert.Empty(t, stats.OldestDate)

	env.createDevice(t, "LR1")
	oldest := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2026, 7, 11, 0, 0, 0, 0, time.UTC)
	env.createReading(t, "LR1", "CT1", 1.0, oldest)
	env.createReading(t, "LR1", "CT1", 2.0, newest)

	stats, err = retention.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalReadings)
	assert.Equal(t, 10, stats.DataAgeDays)
	assert.Equal(t, oldest.Format(time.RFC3339), stats.OldestDate)
	assert.Equal(t, newest.Format(time.RFC3339), stats.NewestDate)
}
