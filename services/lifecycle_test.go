package services

import (
	"testing"

	"sensegrid-server/entities"
	"sensegrid-server/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRetainedOnlineNeverCreatesDevice(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	require.NoError(t, lifecycle.HandleStatus("LR1", "online", true))

	_, err := env.devices.GetByDeviceID("LR1")
	assert.Error(t, err, "retained birth must not create a device")
}

func TestFreshOnlineCreatesExactlyOneDevice(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	// duplicate delivery of the same fresh birth message
	for i := 0; i < 3; i++ {
		require.NoError(t, lifecycle.HandleStatus("LR1", "online", false))
	}

	devices, err := env.devices.GetAll()
	require.NoError(t, err)
	require.Len(t, devices, 1)

	device := devices[0]
	assert.Equal(t, "LR1", device.DeviceID)
	assert.Equal(t, "Device LR1", device.Name)
	assert.Equal(t, "sensor_node", device.DeviceType)
	assert.Equal(t, entities.StatusOnline, device.Status)
	assert.NotNil(t, device.LastSeen)
}

func TestOfflineForUnknownDeviceIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	require.NoError(t, lifecycle.HandleStatus("GHOST", "offline", false))

	devices, err := env.devices.GetAll()
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestStatusFollowsLastFreshMessage(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	type statusMsg struct {
		payload  string
		retained bool
	}

	// retained messages at any position never change status
	sequence := []statusMsg{
		{"online", false},
		{"offline", true},
		{"offline", false},
		{"online", true},
	}
	for _, msg := range sequence {
		_ = lifecycle.HandleStatus("LR1", msg.payload, msg.retained)
	}

	device, err := env.devices.GetByDeviceID("LR1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOffline, device.Status,
		"final status must equal the last non-retained message")
}

func TestInvalidStatusPayloadDropped(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	require.NoError(t, lifecycle.HandleStatus("LR1", "online", false))

	err := lifecycle.HandleStatus("LR1", "rebooting", false)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	device, lookupErr := env.devices.GetByDeviceID("LR1")
	require.NoError(t, lookupErr)
	assert.Equal(t, entities.StatusOnline, device.Status, "invalid payload must not change state")
}

func TestStatusPayloadCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	require.NoError(t, lifecycle.HandleStatus("LR1", "ONLINE", false))
	require.NoError(t, lifecycle.HandleStatus("LR1", "Offline", false))

	device, err := env.devices.GetByDeviceID("LR1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOffline, device.Status)
}

func TestBirthRecoversFromProvisioningRace(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	// admin provisioning wins the race before the birth message lands
	env.createDevice(t, "LR1")

	require.NoError(t, lifecycle.HandleStatus("LR1", "online", false))

	devices, err := env.devices.GetAll()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, entities.StatusOnline, devices[0].Status)
}

// losingBirthDevices simulates losing the provisioning race: the first
// lookup misses, the insert hits the unique constraint, and the retry
// lookup sees the row the competing writer committed.
type losingBirthDevices struct {
	lookups int
	updated *entities.Device
}

func (r *losingBirthDevices) Create(device *entities.Device) error {
	return gorm.ErrDuplicatedKey
}

func (r *losingBirthDevices) GetByDeviceID(deviceID string) (*entities.Device, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, gorm.ErrRecordNotFound
	}
	return &entities.Device{
		DeviceID:   deviceID,
		Name:       "Provisioned " + deviceID,
		DeviceType: "sensor_node",
		Status:     entities.StatusOffline,
	}, nil
}

func (r *losingBirthDevices) Update(device *entities.Device) error {
	r.updated = device
	return nil
}

func (r *losingBirthDevices) GetByID(id string) (*entities.Device, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *losingBirthDevices) GetAll() ([]entities.Device, error) { return nil, nil }

func (r *losingBirthDevices) Delete(deviceID string) error { return nil }

func (r *losingBirthDevices) WithTx(tx *gorm.DB) repositories.DeviceRepository { return r }

func TestBirthRecoversFromDuplicateKeyOnCreate(t *testing.T) {
	env := newTestEnv(t)
	repo := &losingBirthDevices{}
	lifecycle := NewLifecycleService(env.database, repo)

	require.NoError(t, lifecycle.HandleStatus("LR1", "online", false))

	require.NotNil(t, repo.updated, "recovery must mark the existing device")
	assert.Equal(t, entities.StatusOnline, repo.updated.Status)
	assert.NotNil(t, repo.updated.LastSeen)
	assert.Equal(t, 2, repo.lookups)
}

func TestSetStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	lifecycle := NewLifecycleService(env.database, env.devices)

	_, err := lifecycle.SetStatus("LR1", "sleeping")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = lifecycle.SetStatus("LR1", "online")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}
