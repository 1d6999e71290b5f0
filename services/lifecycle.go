package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sensegrid-server/db"
	"sensegrid-server/entities"
	"sensegrid-server/repositories"

	"gorm.io/gorm"
)

// LifecycleService owns device existence and online/offline status.
// Status only ever changes through fresh (non-retained) status
// messages or an explicit administrative update; ingestion never
// touches it.
type LifecycleService struct {
	database db.Database
	devices  repositories.DeviceRepository
}

func NewLifecycleService(database db.Database, devices repositories.DeviceRepository) *LifecycleService {
	return &LifecycleService{database: database, devices: devices}
}

// HandleStatus applies one status message to the device state machine.
//
// Retained messages are broker-held state from a previous session;
// they are discarded unconditionally and must never create or
// resurrect a device.
func (s *LifecycleService) HandleStatus(deviceID, payload string, retained bool) error {
	if retained {
		log.Printf("Ignoring retained status message for device %s", deviceID)
		return nil
	}

	status := strings.ToLower(strings.TrimSpace(payload))
	if status != entities.StatusOnline && status != entities.StatusOffline {
		log.Printf("WARNING: invalid status payload %q for device %s, dropping", payload, deviceID)
		return fmt.Errorf("%w: %q", ErrInvalidStatus, payload)
	}

	return s.database.GetDB().Transaction(func(tx *gorm.DB) error {
		devices := s.devices.WithTx(tx)

		device, err := devices.GetByDeviceID(deviceID)
		switch {
		case err == nil:
			return s.markStatus(devices, device, status)

		case errors.Is(err, gorm.ErrRecordNotFound):
			if status == entities.StatusOffline {
				// Usual artifact of a last-will delivered for a device
				// that was never registered; nothing to do.
				log.Printf("Ignoring offline message for unknown device %s", deviceID)
				return nil
			}
			return s.createOnBirth(tx, devices, deviceID, status)

		default:
			return err
		}
	})
}

// createOnBirth creates the device for a fresh online message. A
// uniqueness violation means an administrative create won the race;
// that is fine, fall through to the status update.
func (s *LifecycleService) createOnBirth(tx *gorm.DB, devices repositories.DeviceRepository, deviceID, status string) error {
	log.Printf("Device %s not found, creating on birth message", deviceID)

	device := &entities.Device{
		DeviceID:   deviceID,
		Name:       fmt.Sprintf("Device %s", deviceID),
		DeviceType: "sensor_node",
	}

	// A unique violation aborts the surrounding transaction on Postgres,
	// so the insert is bracketed by a savepoint to keep the recovery
	// lookup usable when a concurrent writer registers the device first.
	if err := tx.SavePoint("birth_create").Error; err != nil {
		return err
	}
	if err := devices.Create(device); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if err := tx.RollbackTo("birth_create").Error; err != nil {
			return err
		}
		existing, lookupErr := devices.GetByDeviceID(deviceID)
		if lookupErr != nil {
			return lookupErr
		}
		device = existing
	}

	return s.markStatus(devices, device, status)
}

func (s *LifecycleService) markStatus(devices repositories.DeviceRepository, device *entities.Device, status string) error {
	now := time.Now().UTC()
	device.Status = status
	device.LastSeen = &now
	if err := devices.Update(device); err != nil {
		return err
	}
	log.Printf("Device %s status updated to %s", device.DeviceID, status)
	return nil
}

// SetStatus is the administrative status edit used by the HTTP layer.
func (s *LifecycleService) SetStatus(deviceID, status string) (*entities.Device, error) {
	if status != entities.StatusOnline && status != entities.StatusOffline {
		return nil, fmt.Errorf("%w: status must be online or offline", ErrInvalidParameter)
	}

	device, err := s.devices.GetByDeviceID(deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}

	if err := s.markStatus(s.devices, device, status); err != nil {
		return nil, err
	}
	return device, nil
}
