package services

import (
	"testing"
	"time"

	"sensegrid-server/cache"
	"sensegrid-server/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngest(env *testEnv) *IngestService {
	return NewIngestService(env.database, env.devices, env.readings, cache.NewLatestCache())
}

func TestIngestUnknownDeviceWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ingest := newIngest(env)

	_, err := ingest.HandleSensorMessage("GHOST", "CT1", []byte(`{"value": 3.2, "unit": "A"}`))
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	count, countErr := env.readings.Count()
	require.NoError(t, countErr)
	assert.Zero(t, count)
}

func TestIngestStoresReading(t *testing.T) {
	env := newTestEnv(t)
	env.createDevice(t, "LR1")
	ingest := newIngest(env)

	reading, err := ingest.HandleSensorMessage("LR1", "CT1", []byte(`{"value": 3.2, "unit": "A"}`))
	require.NoError(t, err)

	assert.Equal(t, "LR1", reading.DeviceID)
	assert.Equal(t, "CT1", reading.SensorType)
	assert.Equal(t, 3.2, reading.Value)
	assert.Equal(t, "A", reading.Unit)
	assert.False(t, reading.Timestamp.IsZero(), "timestamp must be server-assigned when omitted")
}

func TestIngestHonorsSourceTimestamp(t *testing.T) {
	env := newTestEnv(t)
	env.createDevice(t, "LR1")
	ingest := newIngest(env)

	reading, err := ingest.HandleSensorMessage("LR1", "CT1",
		[]byte(`{"value": 1.0, "timestamp": "2026-08-01T10:00:00Z"}`))
	require.NoError(t, err)

	expected := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, reading.Timestamp.Equal(expected))
}

func TestIngestMalformedPayloadDropped(t *testing.T) {
	env := newTestEnv(t)
	env.createDevice(t, "LR1")
	ingest := newIngest(env)

	malformed := []string{
		`not json`,
		`{"unit": "A"}`,
		`{"value": "high"}`,
		`{"value": 1.0, "timestamp": "yesterday"}`,
	}
	for _, payload := range malformed {
		_, err := ingest.HandleSensorMessage("LR1", "CT1", []byte(payload))
		assert.ErrorIs(t, err, ErrInvalidPayload, "payload %q", payload)
	}

	count, err := env.readings.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestAcceptsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.createDevice(t, "LR1")
	ingest := newIngest(env)

	payload := []byte(`{"value": 3.2, "unit": "A", "timestamp": "2026-08-01T10:00:00Z"}`)
	for i := 0; i < 3; i++ {
		_, err := ingest.HandleSensorMessage("LR1", "CT1", payload)
		require.NoError(t, err)
	}

	count, err := env.readings.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count, "retried publishes are stored as-is")
}

func TestLatestReading(t *testing.T) {
	env := newTestEnv(t)
	env.createDevice(t, "LR1")
	ingest := newIngest(env)

	_, err := ingest.Latest("GHOST", "CT1")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = ingest.Latest("LR1", "CT1")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = ingest.HandleSensorMessage("LR1", "CT1", []byte(`{"value": 1.0, "timestamp": "2026-08-01T10:00:00Z"}`))
	require.NoError(t, err)
	_, err = ingest.HandleSensorMessage("LR1", "CT1", []byte(`{"value": 2.0, "timestamp": "2026-08-01T11:00:00Z"}`))
	require.NoError(t, err)

	latest, err := ingest.Latest("LR1", "CT1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, latest.Value)
}

func TestIngestNeverTouchesDeviceStatus(t *testing.T) {
	env := newTestEnv(t)
	device := env.createDevice(t, "LR1")
	require.Equal(t, entities.StatusOffline, device.Status)
	ingest := newIngest(env)

	_, err := ingest.HandleSensorMessage("LR1", "CT1", []byte(`{"value": 1.0}`))
	require.NoError(t, err)

	after, err := env.devices.GetByDeviceID("LR1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOffline, after.Status,
		"sensor ingestion must not drive lifecycle transitions")
}
