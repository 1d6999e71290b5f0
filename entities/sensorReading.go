package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SensorReading is append-only: rows are never updated after insert,
// and only the retention cleanup deletes them.
type SensorReading struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	DeviceID   string    `gorm:"index;not null" json:"device_id"`
	SensorType string    `gorm:"index;not null" json:"sensor_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	CreatedAt  string    `json:"created_at"`
}

func (r *SensorReading) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return
}
