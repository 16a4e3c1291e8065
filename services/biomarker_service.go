package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutribalance/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BiomarkerService struct{ db *gorm.DB }

func NewBiomarkerService(db *gorm.DB) *BiomarkerService { return &BiomarkerService{db: db} }

// BiomarkerInput is one day's lab values. Omitted values are stored as null.
type BiomarkerInput struct {
	Date                string   `json:"date"`
	BloodGlucose        *float64 `json:"blood_glucose"`
	Cholesterol         *float64 `json:"cholesterol"`
	InflammationMarkers *float64 `json:"inflammation_markers"`
	VitaminD            *float64 `json:"vitamin_d"`
	B12                 *float64 `json:"b12"`
	Iron                *float64 `json:"iron"`
	Omega3              *float64 `json:"omega3"`
}

// List returns all of the user's biomarker entries, newest date first.
func (s *BiomarkerService) List(ctx context.Context, userID string) ([]models.Biomarker, error) {
	rows := []models.Biomarker{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch biomarkers: %w", err)
	}
	return rows, nil
}

// GetByDate returns the entry for date, or nil when none was recorded.
func (s *BiomarkerService) GetByDate(ctx context.Context, userID, date string) (*models.Biomarker, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	var b models.Biomarker
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch biomarker: %w", err)
	}
	return &b, nil
}

// Upsert writes the entry for in.Date, replacing any values already stored
// for that day.
func (s *BiomarkerService) Upsert(ctx context.Context, userID string, in BiomarkerInput) (*models.Biomarker, error) {
	if err := validDate(in.Date); err != nil {
		return nil, err
	}
	for name, v := range map[string]*float64{
		"blood_glucose": in.BloodGlucose, "cholesterol": in.Cholesterol,
		"inflammation_markers": in.InflammationMarkers, "vitamin_d": in.VitaminD,
		"b12": in.B12, "iron": in.Iron, "omega3": in.Omega3,
	} {
		if v != nil && *v < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", models.ErrValidation, name)
		}
	}

	var b models.Biomarker
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, in.Date).First(&b).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch biomarker: %w", err)
	}

	b.UserID = userID
	b.Date = in.Date
	b.BloodGlucose = in.BloodGlucose
	b.Cholesterol = in.Cholesterol
	b.InflammationMarkers = in.InflammationMarkers
	b.VitaminD = in.VitaminD
	b.B12 = in.B12
	b.Iron = in.Iron
	b.Omega3 = in.Omega3

	if err := s.db.WithContext(ctx).Save(&b).Error; err != nil {
		return nil, fmt.Errorf("failed to save biomarker: %w", err)
	}
	return &b, nil
}

func (s *BiomarkerService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Biomarker{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete biomarker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("biomarker %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func validDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrValidation)
	}
	return nil
}
