package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTopicStatus(t *testing.T) {
	classified, err := ClassifyTopic(InboundMessage{
		Topic:    "sensegrid/LR1/status",
		Payload:  []byte("online"),
		Retained: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "LR1", classified.DeviceID)
	assert.Equal(t, ClassStatus, classified.Class)
	assert.Empty(t, classified.SensorType)
	assert.True(t, classified.Retained, "retained flag must be forwarded unmodified")
}

func TestClassifyTopicSensor(t *testing.T) {
	classified, err := ClassifyTopic(InboundMessage{
		Topic:   "sensegrid/LR2/sensors/CT1",
		Payload: []byte(`{"value": 1.5}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "LR2", classified.DeviceID)
	assert.Equal(t, ClassSensor, classified.Class)
	assert.Equal(t, "CT1", classified.SensorType)
	assert.False(t, classified.Retained)
}

func TestClassifyTopicMalformed(t *testing.T) {
	malformed := []string{
		"sensegrid",
		"sensegrid/LR1",
		"sensegrid//status",
		"sensegrid/LR1/telemetry",
		"sensegrid/LR1/sensors",
		"sensegrid/LR1/sensors/",
	}

	for _, topic := range malformed {
		_, err := ClassifyTopic(InboundMessage{Topic: topic})
		assert.ErrorIs(t, err, ErrMalformedTopic, "topic %q", topic)
	}
}
