package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sensegrid-server/cache"
	"sensegrid-server/db"
	"sensegrid-server/entities"
	"sensegrid-server/repositories"

	"gorm.io/gorm"
)

// LiveFeed receives events that should reach connected dashboard
// clients. Implementations must never block the caller.
type LiveFeed interface {
	BroadcastJSON(v any)
}

// SensorPayload is the wire shape of a sensor message:
// {"value": number, "unit": string?, "timestamp": string?}
type SensorPayload struct {
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// IngestService appends sensor readings. It never creates devices and
// never mutates existing readings.
type IngestService struct {
	database db.Database
	devices  repositories.DeviceRepository
	readings repositories.SensorReadingRepository
	latest   *cache.LatestCache
	feed     LiveFeed
}

func NewIngestService(database db.Database, devices repositories.DeviceRepository, readings repositories.SensorReadingRepository, latest *cache.LatestCache) *IngestService {
	return &IngestService{
		database: database,
		devices:  devices,
		readings: readings,
		latest:   latest,
	}
}

// AttachFeed wires a live dashboard feed. Optional.
func (s *IngestService) AttachFeed(feed LiveFeed) {
	s.feed = feed
}

// HandleSensorMessage decodes and stores one sensor message from the
// transport. Malformed payloads are dropped with ErrInvalidPayload;
// there is no redelivery at this layer.
func (s *IngestService) HandleSensorMessage(deviceID, sensorType string, payload []byte) (*entities.SensorReading, error) {
	var decoded SensorPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if decoded.Value == nil {
		return nil, fmt.Errorf("%w: missing value", ErrInvalidPayload)
	}

	var timestamp time.Time
	if decoded.Timestamp != "" {
		parsed, err := ParseTimestamp(decoded.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrInvalidPayload, decoded.Timestamp)
		}
		timestamp = parsed
	}

	reading := &entities.SensorReading{
		DeviceID:   deviceID,
		SensorType: sensorType,
		Value:      *decoded.Value,
		Unit:       decoded.Unit,
		Timestamp:  timestamp,
	}
	return s.store(reading)
}

// CreateReading is the synchronous write path used by the HTTP layer.
func (s *IngestService) CreateReading(deviceID string, reading *entities.SensorReading) (*entities.SensorReading, error) {
	reading.DeviceID = deviceID
	if reading.SensorType == "" {
		return nil, fmt.Errorf("%w: sensor_type is required", ErrInvalidPayload)
	}
	return s.store(reading)
}

// store runs the lookup + insert in one transaction per message.
func (s *IngestService) store(reading *entities.SensorReading) (*entities.SensorReading, error) {
	err := s.database.GetDB().Transaction(func(tx *gorm.DB) error {
		if _, err := s.devices.WithTx(tx).GetByDeviceID(reading.DeviceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeviceNotFound
			}
			return err
		}
		return s.readings.WithTx(tx).Create(reading)
	})
	if err != nil {
		return nil, err
	}

	if s.latest != nil {
		s.latest.Put(*reading)
	}
	if s.feed != nil {
		s.feed.BroadcastJSON(map[string]any{
			"type":        "reading",
			"device_id":   reading.DeviceID,
			"sensor_type": reading.SensorType,
			"value":       reading.Value,
			"unit":        reading.Unit,
			"timestamp":   reading.Timestamp,
		})
	}

	log.Printf("Stored sensor reading: %s/%s = %v %s", reading.DeviceID, reading.SensorType, reading.Value, reading.Unit)
	return reading, nil
}

// Latest serves the newest reading for a device/sensor pair, trying
// the in-memory cache before the store.
func (s *IngestService) Latest(deviceID, sensorType string) (*entities.SensorReading, error) {
	if _, err := s.devices.GetByDeviceID(deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if s.latest != nil {
		if reading, ok := s.latest.Get(deviceID, sensorType); ok {
			return &reading, nil
		}
	}

	reading, err := s.readings.GetLatest(deviceID, sensorType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoData
		}
		return nil, err
	}
	return reading, nil
}
