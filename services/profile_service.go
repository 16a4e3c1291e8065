package services

import (
	"context"
	"errors"
	"fmt"

	"nutribalance/models"
	"nutribalance/nutrition"

	"gorm.io/gorm"
)

type ProfileService struct{ db *gorm.DB }

func NewProfileService(db *gorm.DB) *ProfileService { return &ProfileService{db: db} }

// ProfileInput is the full profile as sent on create.
type ProfileInput struct {
	Name           string              `json:"name"`
	Age            int                 `json:"age"`
	Sex            nutrition.Sex       `json:"sex"`
	Height         float64             `json:"height"`
	Weight         float64             `json:"weight"`
	Ethnicity      string              `json:"ethnicity"`
	Region         string              `json:"region"`
	Lifestyle      nutrition.Lifestyle `json:"lifestyle"`
	MedicalHistory []string            `json:"medical_history"`
	HealthGoals    []string            `json:"health_goals"`
}

// ProfileUpdate carries only the fields being changed.
type ProfileUpdate struct {
	Name           *string              `json:"name"`
	Age            *int                 `json:"age"`
	Sex            *nutrition.Sex       `json:"sex"`
	Height         *float64             `json:"height"`
	Weight         *float64             `json:"weight"`
	Ethnicity      *string              `json:"ethnicity"`
	Region         *string              `json:"region"`
	Lifestyle      *nutrition.Lifestyle `json:"lifestyle"`
	MedicalHistory *[]string            `json:"medical_history"`
	HealthGoals    *[]string            `json:"health_goals"`
}

// Targets is the daily target sheet for a profile.
type Targets struct {
	Macronutrients []nutrition.NutrientTarget `json:"macronutrients"`
	Micronutrients []nutrition.NutrientTarget `json:"micronutrients"`
	BMI            float64                    `json:"bmi,omitempty"`
	BMICategory    string                     `json:"bmi_category,omitempty"`
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

// Upsert creates the user's profile or replaces every field of the existing one.
func (s *ProfileService) Upsert(ctx context.Context, userID, email string, in ProfileInput) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	p.UserID = userID
	if email != "" {
		p.Email = email
	}
	p.Name = in.Name
	p.Age = in.Age
	p.Sex = in.Sex
	p.Height = in.Height
	p.Weight = in.Weight
	p.Ethnicity = in.Ethnicity
	p.Region = in.Region
	p.Lifestyle = in.Lifestyle
	p.MedicalHistory = orEmpty(in.MedicalHistory)
	p.HealthGoals = orEmpty(in.HealthGoals)

	if err := p.Nutrition().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &p, nil
}

// Update applies a partial update to an existing profile.
func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (*models.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Age != nil {
		p.Age = *upd.Age
	}
	if upd.Sex != nil {
		p.Sex = *upd.Sex
	}
	if upd.Height != nil {
		p.Height = *upd.Height
	}
	if upd.Weight != nil {
		p.Weight = *upd.Weight
	}
	if upd.Ethnicity != nil {
		p.Ethnicity = *upd.Ethnicity
	}
	if upd.Region != nil {
		p.Region = *upd.Region
	}
	if upd.Lifestyle != nil {
		p.Lifestyle = *upd.Lifestyle
	}
	if upd.MedicalHistory != nil {
		p.MedicalHistory = orEmpty(*upd.MedicalHistory)
	}
	if upd.HealthGoals != nil {
		p.HealthGoals = orEmpty(*upd.HealthGoals)
	}

	if err := p.Nutrition().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile: %w", models.ErrNotFound)
	}
	return nil
}

// Targets computes macro and micro targets for the user's profile.
func (s *ProfileService) Targets(ctx context.Context, userID string) (*Targets, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return targetsFor(p), nil
}

func targetsFor(p *models.Profile) *Targets {
	np := p.Nutrition()
	t := &Targets{
		Macronutrients: nutrition.MacroTargets(np),
		Micronutrients: nutrition.MicroTargets(np),
	}
	if bmi, err := nutrition.CalculateBMI(p.Height, p.Weight); err == nil {
		t.BMI = float64(int(bmi*10+0.5)) / 10
		t.BMICategory = nutrition.BMICategory(bmi)
	}
	return t
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
