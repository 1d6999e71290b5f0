package services

import (
	"fmt"
	"strings"
)

type MessageClass string

const (
	ClassStatus MessageClass = "status"
	ClassSensor MessageClass = "sensor"
)

// InboundMessage is one message as handed over by the transport.
type InboundMessage struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// Classification is the parsed identity of an inbound message. The
// Retained flag is carried through untouched; only the lifecycle
// coordinator inspects it.
type Classification struct {
	DeviceID   string
	Class      MessageClass
	SensorType string
	Retained   bool
}

// ClassifyTopic parses {prefix}/{device_id}/status and
// {prefix}/{device_id}/sensors/{sensor_type} topics. Anything else is
// ErrMalformedTopic and the caller drops the message.
func ClassifyTopic(msg InboundMessage) (*Classification, error) {
	parts := strings.Split(msg.Topic, "/")
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q has too few segments", ErrMalformedTopic, msg.Topic)
	}

	deviceID := parts[1]
	if deviceID == "" {
		return nil, fmt.Errorf("%w: %q has empty device id", ErrMalformedTopic, msg.Topic)
	}

	switch parts[2] {
	case "status":
		return &Classification{
			DeviceID: deviceID,
			Class:    ClassStatus,
			Retained: msg.Retained,
		}, nil
	case "sensors":
		if len(parts) < 4 || parts[3] == "" {
			return nil, fmt.Errorf("%w: %q lacks a sensor type", ErrMalformedTopic, msg.Topic)
		}
		return &Classification{
			DeviceID:   deviceID,
			Class:      ClassSensor,
			SensorType: parts[3],
			Retained:   msg.Retained,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q has unknown class %q", ErrMalformedTopic, msg.Topic, parts[2])
	}
}
