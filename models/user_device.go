package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserDevice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;index;not null" json:"user_id"`
	Platform    string    `gorm:"size:16" json:"platform"` // "android" | "ios"
	TokenHash   string    `gorm:"size:64" json:"-"`
	EndpointARN string    `gorm:"size:256" json:"endpoint_arn"`
	Enabled     bool      `gorm:"default:true" json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d *UserDevice) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
