package usecases

import (
	"errors"
	"fmt"

	"sensegrid-server/cache"
	"sensegrid-server/entities"
	"sensegrid-server/repositories"
	"sensegrid-server/services"

	"gorm.io/gorm"
)

type DeviceUseCase struct {
	DeviceRepo  repositories.DeviceRepository
	ReadingRepo repositories.SensorReadingRepository
	Latest      *cache.LatestCache
}

func NewDeviceUseCase(deviceRepo repositories.DeviceRepository, readingRepo repositories.SensorReadingRepository, latest *cache.LatestCache) *DeviceUseCase {
	return &DeviceUseCase{
		DeviceRepo:  deviceRepo,
		ReadingRepo: readingRepo,
		Latest:      latest,
	}
}

// CreateDevice provisions a device explicitly. This races with
// creation-on-birth from the subscriber path; a duplicate here is a
// caller error, the subscriber side is the one that recovers.
func (uc *DeviceUseCase) CreateDevice(device *entities.Device) error {
	if device.DeviceID == "" {
		return errors.New("device_id is required")
	}
	if device.Name == "" {
		return errors.New("device name is required")
	}

	if err := uc.DeviceRepo.Create(device); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("device %s already exists", device.DeviceID)
		}
		return err
	}
	return nil
}

// GetDevice retrieves a device by its external device_id
func (uc *DeviceUseCase) GetDevice(deviceID string) (*entities.Device, error) {
	if deviceID == "" {
		return nil, errors.New("device_id is required")
	}
	device, err := uc.DeviceRepo.GetByDeviceID(deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrDeviceNotFound
		}
		return nil, err
	}
	return device, nil
}

// GetAllDevices retrieves all devices
func (uc *DeviceUseCase) GetAllDevices() ([]entities.Device, error) {
	return uc.DeviceRepo.GetAll()
}

// UpdateDevice updates display fields of a device. Status is not
// editable here; it belongs to the lifecycle coordinator.
func (uc *DeviceUseCase) UpdateDevice(deviceID string, updates *entities.Device) (*entities.Device, error) {
	existing, err := uc.GetDevice(deviceID)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		existing.Name = updates.Name
	}
	if updates.DeviceType != "" {
		existing.DeviceType = updates.DeviceType
	}

	if err := uc.DeviceRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteDevice removes a device and its readings. Administrative
// action only; nothing on the ingestion path ever deletes a device.
func (uc *DeviceUseCase) DeleteDevice(deviceID string) error {
	if _, err := uc.GetDevice(deviceID); err != nil {
		return err
	}

	if err := uc.DeviceRepo.Delete(deviceID); err != nil {
		return err
	}
	if uc.Latest != nil {
		uc.Latest.Invalidate(deviceID)
	}
	return nil
}

// GetReading retrieves a stored reading by ID
func (uc *DeviceUseCase) GetReading(id string) (*entities.SensorReading, error) {
	if id == "" {
		return nil, errors.New("reading id is required")
	}
	reading, err := uc.ReadingRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNoData
		}
		return nil, err
	}
	return reading, nil
}
