package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MolecularBalance is the stored balance score of one user for one day.
// The rows form the series the trend analysis runs over.
type MolecularBalance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"size:64;uniqueIndex:idx_balance_user_date;not null" json:"user_id"`
	Date         string    `gorm:"size:10;uniqueIndex:idx_balance_user_date;not null" json:"date"` // YYYY-MM-DD
	Score        int       `gorm:"not null" json:"score"`
	Deficiencies []string  `gorm:"serializer:json;type:jsonb" json:"deficiencies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (MolecularBalance) TableName() string { return "molecular_balance" }

func (b *MolecularBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
