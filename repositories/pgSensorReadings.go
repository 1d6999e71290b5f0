package repositories

import (
	"time"

	"sensegrid-server/db"
	"sensegrid-server/entities"

	"gorm.io/gorm"
)

type sensorReadingPgRepository struct {
	db *gorm.DB
}

func NewSensorReadingPgRepository(database db.Database) SensorReadingRepository {
	return &sensorReadingPgRepository{db: database.GetDB()}
}

func (r *sensorReadingPgRepository) WithTx(tx *gorm.DB) SensorReadingRepository {
	return &sensorReadingPgRepository{db: tx}
}

func (r *sensorReadingPgRepository) Create(reading *entities.SensorReading) error {
	return r.db.Create(reading).Error
}

func (r *sensorReadingPgRepository) GetByID(id string) (*entities.SensorReading, error) {
	var reading entities.SensorReading
	err := r.db.Where("id = ?", id).First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *sensorReadingPgRepository) GetLatest(deviceID, sensorType string) (*entities.SensorReading, error) {
	var reading entities.SensorReading
	err := r.db.
		Where("device_id = ? AND sensor_type = ?", deviceID, sensorType).
		Order("timestamp DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *sensorReadingPgRepository) GetRange(deviceID, sensorType string, start, end time.Time) ([]entities.SensorReading, error) {
	var readings []entities.SensorReading
	err := r.db.
		Where("device_id = ? AND sensor_type = ? AND timestamp >= ? AND timestamp <= ?",
			deviceID, sensorType, start, end).
		Order("timestamp ASC").
		Find(&readings).Error
	return readings, err
}

func (r *sensorReadingPgRepository) AggregateRange(deviceID, sensorType string, start, end time.Time) (*ReadingAggregate, error) {
	var agg ReadingAggregate
	err := r.db.Model(&entities.SensorReading{}).
		Select("COALESCE(MIN(value), 0) AS min_value, COALESCE(MAX(value), 0) AS max_value, COALESCE(AVG(value), 0) AS avg_value, COUNT(*) AS count").
		Where("device_id = ? AND sensor_type = ? AND timestamp >= ? AND timestamp <= ?",
			deviceID, sensorType, start, end).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *sensorReadingPgRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.SensorReading{}).Count(&count).Error
	return count, err
}

func (r *sensorReadingPgRepository) CountInRange(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.SensorReading{}).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *sensorReadingPgRepository) Bounds() (*time.Time, *time.Time, error) {
	return r.bounds(r.db.Model(&entities.SensorReading{}))
}

func (r *sensorReadingPgRepository) BoundsInRange(start, end time.Time) (*time.Time, *time.Time, error) {
	return r.bounds(r.db.Model(&entities.SensorReading{}).
		Where("timestamp >= ? AND timestamp <= ?", start, end))
}

func (r *sensorReadingPgRepository) bounds(query *gorm.DB) (*time.Time, *time.Time, error) {
	var row struct {
		Oldest *time.Time
		Newest *time.Time
	}
	err := query.Select("MIN(timestamp) AS oldest, MAX(timestamp) AS newest").Scan(&row).Error
	if err != nil {
		return nil, nil, err
	}
	return row.Oldest, row.Newest, nil
}

func (r *sensorReadingPgRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", cutoff).Delete(&entities.SensorReading{})
	return result.RowsAffected, result.Error
}
