package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Biomarker holds lab values for one day. Every value is optional.
type Biomarker struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string    `gorm:"size:64;uniqueIndex:idx_biomarkers_user_date;not null" json:"user_id"`
	Date                string    `gorm:"size:10;uniqueIndex:idx_biomarkers_user_date;not null" json:"date"` // YYYY-MM-DD
	BloodGlucose        *float64  `json:"blood_glucose"`
	Cholesterol         *float64  `json:"cholesterol"`
	InflammationMarkers *float64  `json:"inflammation_markers"`
	VitaminD            *float64  `json:"vitamin_d"`
	B12                 *float64  `json:"b12"`
	Iron                *float64  `json:"iron"`
	Omega3              *float64  `json:"omega3"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (b *Biomarker) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
