package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecommendationSourceAI       = "ai"
	RecommendationSourceFallback = "fallback"
)

type Recommendation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string     `gorm:"size:64;index;not null" json:"user_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"size:32" json:"category"` // diet | supplements | lifestyle | exercise
	Priority    string     `gorm:"size:16" json:"priority"` // low | medium | high
	Source      string     `gorm:"size:16" json:"source"`
	Read        bool       `gorm:"default:false" json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func (r *Recommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
