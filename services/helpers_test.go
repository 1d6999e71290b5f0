package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sensegrid-server/db"
	"sensegrid-server/entities"
	"sensegrid-server/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	database db.Database
	devices  repositories.DeviceRepository
	readings repositories.SensorReadingRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(&entities.Device{}, &entities.SensorReading{}))

	database := &db.GormDatabase{DB: gdb}
	return &testEnv{
		database: database,
		devices:  repositories.NewDevicePgRepository(database),
		readings: repositories.NewSensorReadingPgRepository(database),
	}
}

func (e *testEnv) createDevice(t *testing.T, deviceID string) *entities.Device {
	t.Helper()
	device := &entities.Device{
		DeviceID:   deviceID,
		Name:       "Device " + deviceID,
		DeviceType: "sensor_node",
	}
	require.NoError(t, e.devices.Create(device))
	return device
}

func (e *testEnv) createReading(t *testing.T, deviceID, sensorType string, value float64, timestamp time.Time) *entities.SensorReading {
	t.Helper()
	reading := &entities.SensorReading{
		DeviceID:   deviceID,
		SensorType: sensorType,
		Value:      value,
		Unit:       "A",
		Timestamp:  timestamp,
	}
	require.NoError(t, e.readings.Create(reading))
	return reading
}
