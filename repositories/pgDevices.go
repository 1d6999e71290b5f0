package repositories

import (
	"time"

	"sensegrid-server/db"
	"sensegrid-server/entities"

	"gorm.io/gorm"
)

type devicePgRepository struct {
	db *gorm.DB
}

func NewDevicePgRepository(database db.Database) DeviceRepository {
	return &devicePgRepository{db: database.GetDB()}
}

func (r *devicePgRepository) WithTx(tx *gorm.DB) DeviceRepository {
	return &devicePgRepository{db: tx}
}

func (r *devicePgRepository) Create(device *entities.Device) error {
	return r.db.Create(device).Error
}

func (r *devicePgRepository) GetByID(id string) (*entities.Device, error) {
	var device entities.Device
	err := r.db.Where("id = ?", id).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *devicePgRepository) GetByDeviceID(deviceID string) (*entities.Device, error) {
	var device entities.Device
	err := r.db.Where("device_id = ?", deviceID).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *devicePgRepository) GetAll() ([]entities.Device, error) {
	var devices []entities.Device
	err := r.db.Order("created_at ASC").Find(&devices).Error
	return devices, err
}

func (r *devicePgRepository) Update(device *entities.Device) error {
	device.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.db.Save(device).Error
}

func (r *devicePgRepository) Delete(deviceID string) error {
	// Readings cascade from device lifetime, not from retention sweeps
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).Delete(&entities.SensorReading{}).Error; err != nil {
			return err
		}
		return tx.Where("device_id = ?", deviceID).Delete(&entities.Device{}).Error
	})
}
