package repositories

import (
	"time"

	"sensegrid-server/entities"

	"gorm.io/gorm"
)

type DeviceRepository interface {
	Create(device *entities.Device) error
	GetByID(id string) (*entities.Device, error)
	GetByDeviceID(deviceID string) (*entities.Device, error)
	GetAll() ([]entities.Device, error)
	Update(device *entities.Device) error
	Delete(deviceID string) error
	// WithTx returns a copy of the repository bound to the given
	// transaction handle.
	WithTx(tx *gorm.DB) DeviceRepository
}

// ReadingAggregate is the min/max/avg/count summary of one filtered
// set of readings.
type ReadingAggregate struct {
	MinValue float64
	MaxValue float64
	AvgValue float64
	Count    int64
}

type SensorReadingRepository interface {
	Create(reading *entities.SensorReading) error
	GetByID(id string) (*entities.SensorReading, error)
	GetLatest(deviceID, sensorType string) (*entities.SensorReading, error)
	GetRange(deviceID, sensorType string, start, end time.Time) ([]entities.SensorReading, error)
	AggregateRange(deviceID, sensorType string, start, end time.Time) (*ReadingAggregate, error)
	Count() (int64, error)
	CountInRange(start, end time.Time) (int64, error)
	Bounds() (oldest, newest *time.Time, err error)
	BoundsInRange(start, end time.Time) (oldest, newest *time.Time, err error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) SensorReadingRepository
}
