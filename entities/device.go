package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type Device struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	DeviceID   string     `gorm:"uniqueIndex;not null" json:"device_id"`
	Name       string     `json:"name"`
	DeviceType string     `json:"device_type"`
	Status     string     `json:"status"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Status == "" {
		d.Status = StatusOffline
	}
	d.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	d.UpdatedAt = d.CreatedAt
	return
}
