// Package nutrition holds the pure nutrient math behind the dashboard: daily
// targets from a profile, intake totals from logged meals, the Molecular
// Balance Score and the score trend. Nothing here touches the database.
package nutrition

import (
	"errors"
	"fmt"
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type Lifestyle string

const (
	LifestyleVegan       Lifestyle = "vegan"
	LifestyleVegetarian  Lifestyle = "vegetarian"
	LifestyleOmnivore    Lifestyle = "omnivore"
	LifestylePescatarian Lifestyle = "pescatarian"
	LifestyleKeto        Lifestyle = "keto"
	LifestylePaleo       Lifestyle = "paleo"
)

// Category classifies micronutrients.
type Category string

const (
	CategoryVitamin   Category = "vitamin"
	CategoryMineral   Category = "mineral"
	CategoryAminoAcid Category = "amino_acid"
	CategoryFattyAcid Category = "fatty_acid"
)

// Condition and goal tags used by the target calculator.
const (
	GoalMuscleGain = "muscle_gain"
	GoalWeightLoss = "weight_loss"

	ConditionDiabetes       = "diabetes"
	ConditionCardiovascular = "cardiovascular"
)

var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the subset of a user's health profile the calculator needs.
// MedicalHistory and HealthGoals may be nil.
type Profile struct {
	Age            int       `json:"age"`
	Sex            Sex       `json:"sex"`
	Height         float64   `json:"height"` // cm
	Weight         float64   `json:"weight"` // kg
	Lifestyle      Lifestyle `json:"lifestyle"`
	MedicalHistory []string  `json:"medical_history"`
	HealthGoals    []string  `json:"health_goals"`
}

// Validate checks the invariants a profile must hold before targets are derived.
func (p Profile) Validate() error {
	switch {
	case p.Age <= 0:
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be positive", ErrInvalidProfile)
	case p.Weight <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrInvalidProfile)
	}
	switch p.Sex {
	case SexMale, SexFemale, SexOther:
	default:
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidProfile, p.Sex)
	}
	switch p.Lifestyle {
	case LifestyleVegan, LifestyleVegetarian, LifestyleOmnivore,
		LifestylePescatarian, LifestyleKeto, LifestylePaleo:
	default:
		return fmt.Errorf("%w: unknown lifestyle %q", ErrInvalidProfile, p.Lifestyle)
	}
	return nil
}

func (p Profile) hasGoal(goal string) bool      { return contains(p.HealthGoals, goal) }
func (p Profile) hasCondition(cond string) bool { return contains(p.MedicalHistory, cond) }

// NutrientTarget is one daily target. Calories is only meaningful for
// macronutrients, Category only for micronutrients.
type NutrientTarget struct {
	Name     string   `json:"name"`
	Amount   float64  `json:"amount"`
	Unit     string   `json:"unit"`
	Calories float64  `json:"calories,omitempty"`
	Category Category `json:"category,omitempty"`
}

// Micronutrient as logged on a food item.
type Micronutrient struct {
	Name     string   `json:"name"`
	Amount   float64  `json:"amount"`
	Unit     string   `json:"unit"`
	Category Category `json:"category,omitempty"`
}

// FoodItem is a single logged food. Macronutrients is keyed by the raw
// macronutrient name (protein, carbohydrates, fat, fiber, calories).
type FoodItem struct {
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Quantity       float64            `json:"quantity"`
	Unit           string             `json:"unit"`
	Macronutrients map[string]float64 `json:"macronutrients"`
	Micronutrients []Micronutrient    `json:"micronutrients"`
}

// Meal is a timestamped collection of food items.
type Meal struct {
	Time      time.Time  `json:"time"`
	FoodItems []FoodItem `json:"food_items"`
}

// NutrientAmount is a summed intake value.
type NutrientAmount struct {
	Name          string   `json:"name"`
	Amount        float64  `json:"amount"`
	Unit          string   `json:"unit"`
	Calories      float64  `json:"calories,omitempty"`
	Category      Category `json:"category,omitempty"`
	CategoryKnown bool     `json:"category_known,omitempty"`
}

// DailyTotals splits one day's intake into macro and micro groups.
type DailyTotals struct {
	Macronutrients []NutrientAmount `json:"macronutrients"`
	Micronutrients []NutrientAmount `json:"micronutrients"`
}

// All returns macro followed by micro totals.
func (d DailyTotals) All() []NutrientAmount {
	out := make([]NutrientAmount, 0, len(d.Macronutrients)+len(d.Micronutrients))
	out = append(out, d.Macronutrients...)
	return append(out, d.Micronutrients...)
}

type NutrientStatus string

const (
	StatusExcellent NutrientStatus = "excellent"
	StatusGood      NutrientStatus = "good"
	StatusWarning   NutrientStatus = "warning"
	StatusPoor      NutrientStatus = "poor"
	StatusCritical  NutrientStatus = "critical"
)

// ProgressPoint is one day's balance score.
type ProgressPoint struct {
	Date         time.Time `json:"date"`
	BalanceScore int       `json:"balance_score"`
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
