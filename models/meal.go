package models

import (
	"time"

	"nutribalance/nutrition"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal is one logged meal. Foods keeps the full nutrient breakdown per item;
// TotalNutrition is derived from Foods on every write and never taken from
// the client.
type Meal struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string                `gorm:"size:64;index:idx_meals_user_time;not null" json:"user_id"`
	Name           string                `gorm:"size:255" json:"name"`
	Description    string                `gorm:"type:text" json:"description,omitempty"`
	MealTime       time.Time             `gorm:"index:idx_meals_user_time;not null" json:"meal_time"`
	Foods          []nutrition.FoodItem  `gorm:"serializer:json;type:jsonb" json:"foods"`
	TotalNutrition nutrition.DailyTotals `gorm:"serializer:json;type:jsonb" json:"total_nutrition"`
	PhotoURL       string                `gorm:"size:512" json:"photo_url,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Nutrition returns the aggregator view of the meal.
func (m *Meal) Nutrition() nutrition.Meal {
	return nutrition.Meal{Time: m.MealTime, FoodItems: m.Foods}
}
