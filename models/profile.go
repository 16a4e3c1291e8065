package models

import (
	"time"

	"nutribalance/nutrition"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the health profile of one user. UserID is the subject of the
// bearer token, so there is at most one row per user.
type Profile struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string              `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	Email          string              `gorm:"size:255" json:"email,omitempty"`
	Name           string              `gorm:"size:255" json:"name,omitempty"`
	Age            int                 `gorm:"not null" json:"age"`
	Sex            nutrition.Sex       `gorm:"size:16;not null" json:"sex"`
	Height         float64             `gorm:"not null" json:"height"`
	Weight         float64             `gorm:"not null" json:"weight"`
	Ethnicity      string              `gorm:"size:64" json:"ethnicity,omitempty"`
	Region         string              `gorm:"size:64" json:"region,omitempty"`
	Lifestyle      nutrition.Lifestyle `gorm:"size:32;not null" json:"lifestyle"`
	MedicalHistory []string            `gorm:"serializer:json;type:jsonb" json:"medical_history"`
	HealthGoals    []string            `gorm:"serializer:json;type:jsonb" json:"health_goals"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Nutrition returns the calculator view of the profile.
func (p *Profile) Nutrition() nutrition.Profile {
	return nutrition.Profile{
		Age:            p.Age,
		Sex:            p.Sex,
		Height:         p.Height,
		Weight:         p.Weight,
		Lifestyle:      p.Lifestyle,
		MedicalHistory: p.MedicalHistory,
		HealthGoals:    p.HealthGoals,
	}
}
