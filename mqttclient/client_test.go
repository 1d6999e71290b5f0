package mqttclient

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sensegrid-server/cache"
	"sensegrid-server/db"
	"sensegrid-server/entities"
	"sensegrid-server/repositories"
	"sensegrid-server/services"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeMessage struct {
	topic    string
	payload  []byte
	retained bool
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return m.retained }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestDispatcher(t *testing.T) (*services.Dispatcher, repositories.DeviceRepository) {
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
	devices := repositories.NewDevicePgRepository(database)
	readings := repositories.NewSensorReadingPgRepository(database)
	lifecycle := services.NewLifecycleService(database, devices)
	ingest := services.NewIngestService(database, devices, readings, cache.NewLatestCache())
	return services.NewDispatcher(lifecycle, ingest), devices
}

// Inbound messages must keep flowing even when the initial connect
// attempt never succeeded: the broker can come up later and the
// background retry will subscribe on its own.
func TestInboundFlowsWithoutBrokerConnection(t *testing.T) {
	dispatcher, devices := newTestDispatcher(t)

	c := New("127.0.0.1", 1, "sensegrid", "test-client", dispatcher)
	go c.consume()
	defer c.Stop()

	// well past the channel capacity; without a running consumer the
	// handler goroutine would wedge here
	for i := 0; i < 300; i++ {
		c.onMessage(nil, fakeMessage{topic: "sensegrid/LR1/status", payload: []byte("online")})
	}

	require.Eventually(t, func() bool {
		device, err := devices.GetByDeviceID("LR1")
		return err == nil && device.Status == entities.StatusOnline
	}, 2*time.Second, 10*time.Millisecond)
}
