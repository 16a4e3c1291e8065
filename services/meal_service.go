package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutribalance/models"
	"nutribalance/nutrition"
	"nutribalance/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PhotoUploader stores a data-URI image and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, dataURI, prefix string) (string, error)
}

// DayRefresher recomputes the stored balance for one user and day.
type DayRefresher interface {
	Refresh(ctx context.Context, userID string, day time.Time) error
}

type MealService struct {
	db       *gorm.DB
	photos   PhotoUploader
	balances DayRefresher
	now      func() time.Time
}

// NewMealService wires the meal store. photos and balances may be nil.
func NewMealService(db *gorm.DB, photos PhotoUploader, balances DayRefresher) *MealService {
	return &MealService{db: db, photos: photos, balances: balances, now: time.Now}
}

type MealInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	MealTime    time.Time            `json:"meal_time"`
	Foods       []nutrition.FoodItem `json:"foods"`
	PhotoBase64 string               `json:"photo_base64"`
}

// MealUpdate carries only the fields being changed. A nil Foods keeps the
// existing items.
type MealUpdate struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	MealTime    *time.Time           `json:"meal_time"`
	Foods       []nutrition.FoodItem `json:"foods"`
	PhotoBase64 string               `json:"photo_base64"`
}

func (s *MealService) Create(ctx context.Context, userID string, in MealInput) (*models.Meal, error) {
	if err := validateFoods(in.Foods); err != nil {
		return nil, err
	}

	meal := &models.Meal{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		MealTime:    in.MealTime,
		Foods:       orEmptyFoods(in.Foods),
	}
	if meal.MealTime.IsZero() {
		meal.MealTime = s.now()
	}
	meal.MealTime = meal.MealTime.UTC()
	meal.TotalNutrition = totalsFor(meal)

	if in.PhotoBase64 != "" {
		url, err := s.uploadPhoto(ctx, userID, in.PhotoBase64)
		if err != nil {
			return nil, err
		}
		meal.PhotoURL = url
	}

	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	s.refresh(ctx, userID, meal.MealTime)
	return meal, nil
}

// List returns the user's meals newest first, optionally bounded by
// inclusive start and end times.
func (s *MealService) List(ctx context.Context, userID string, from, to *time.Time) ([]models.Meal, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("meal_time DESC")
	if from != nil {
		q = q.Where("meal_time >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("meal_time <= ?", to.UTC())
	}

	meals := []models.Meal{}
	if err := q.Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch meals: %w", err)
	}
	return meals, nil
}

func (s *MealService) Get(ctx context.Context, userID string, mealID uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("meal %s: %w", mealID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meal: %w", err)
	}
	return &meal, nil
}

func (s *MealService) Update(ctx context.Context, userID string, mealID uuid.UUID, upd MealUpdate) (*models.Meal, error) {
	meal, err := s.Get(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}
	previousDay := meal.MealTime

	if upd.Name != nil {
		meal.Name = *upd.Name
	}
	if upd.Description != nil {
		meal.Description = *upd.Description
	}
	if upd.MealTime != nil && !upd.MealTime.IsZero() {
		meal.MealTime = upd.MealTime.UTC()
	}
	if upd.Foods != nil {
		if err := validateFoods(upd.Foods); err != nil {
			return nil, err
		}
		meal.Foods = upd.Foods
	}
	meal.TotalNutrition = totalsFor(meal)

	if upd.PhotoBase64 != "" {
		url, err := s.uploadPhoto(ctx, userID, upd.PhotoBase64)
		if err != nil {
			return nil, err
		}
		meal.PhotoURL = url
	}

	if err := s.db.WithContext(ctx).Save(meal).Error; err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}

	s.refresh(ctx, userID, meal.MealTime)
	if nutrition.DayKey(previousDay) != nutrition.DayKey(meal.MealTime) {
		s.refresh(ctx, userID, previousDay)
	}
	return meal, nil
}

func (s *MealService) Delete(ctx context.Context, userID string, mealID uuid.UUID) error {
	meal, err := s.Get(ctx, userID, mealID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(meal).Error; err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	s.refresh(ctx, userID, meal.MealTime)
	return nil
}

func (s *MealService) uploadPhoto(ctx context.Context, userID, dataURI string) (string, error) {
	if s.photos == nil {
		return "", fmt.Errorf("photo uploads are not configured: %w", models.ErrUnavailable)
	}
	url, err := s.photos.Upload(ctx, dataURI, "meals/"+userID)
	if errors.Is(err, utils.ErrInvalidImage) {
		return "", fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload meal photo: %w", err)
	}
	return url, nil
}

// refresh keeps the stored daily balance in step with the meal log. A
// failure here does not undo the meal write.
func (s *MealService) refresh(ctx context.Context, userID string, day time.Time) {
	if s.balances == nil {
		return
	}
	if err := s.balances.Refresh(ctx, userID, day); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("date", nutrition.DayKey(day)).Msg("balance refresh failed")
	}
}

func totalsFor(m *models.Meal) nutrition.DailyTotals {
	return nutrition.AggregateDaily([]nutrition.Meal{m.Nutrition()})
}

func validateFoods(foods []nutrition.FoodItem) error {
	for i, f := range foods {
		if f.Quantity < 0 {
			return fmt.Errorf("%w: foods[%d]: quantity must not be negative", models.ErrValidation, i)
		}
		for name, v := range f.Macronutrients {
			if v < 0 {
				return fmt.Errorf("%w: foods[%d]: %s must not be negative", models.ErrValidation, i, name)
			}
		}
		for _, mn := range f.Micronutrients {
			if mn.Name == "" {
				return fmt.Errorf("%w: foods[%d]: micronutrient name is required", models.ErrValidation, i)
			}
			if mn.Amount < 0 {
				return fmt.Errorf("%w: foods[%d]: %s must not be negative", models.ErrValidation, i, mn.Name)
			}
		}
	}
	return nil
}

func orEmptyFoods(f []nutrition.FoodItem) []nutrition.FoodItem {
	if f == nil {
		return []nutrition.FoodItem{}
	}
	return f
}
