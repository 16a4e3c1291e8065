package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"nutribalance/models"
	"nutribalance/nutrition"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	recommendationTTL      = 7 * 24 * time.Hour
	recommendationLookback = 7 * 24 * time.Hour
	mealsPerDay            = 3

	systemPrompt = "You are a molecular nutrition expert. Provide recommendations in JSON format only."
)

type RecommendationService struct {
	db     *gorm.DB
	client *resty.Client
	apiKey string
	model  string
	now    func() time.Time
}

// NewRecommendationService builds the service around an OpenRouter-compatible
// chat completions endpoint. An empty apiKey means every generation uses the
// fallback list.
func NewRecommendationService(db *gorm.DB, baseURL, apiKey, model, referer string) *RecommendationService {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", referer).
		SetAuthToken(apiKey).
		SetTimeout(30 * time.Second)

	return &RecommendationService{db: db, client: c, apiKey: apiKey, model: model, now: time.Now}
}

// RecommendationDraft is a recommendation before it is stored.
type RecommendationDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// List returns the user's recommendations, newest first.
func (s *RecommendationService) List(ctx context.Context, userID string) ([]models.Recommendation, error) {
	recs := []models.Recommendation{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return recs, nil
}

// Generate asks the model for recommendations based on the profile, the
// last week of meals and the latest deficiencies, and stores the result.
// Any model failure yields the fallback list instead of an error.
func (s *RecommendationService) Generate(ctx context.Context, userID string) ([]models.Recommendation, error) {
	db := s.db.WithContext(ctx)

	var profile models.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	now := s.now().UTC()
	var meals []models.Meal
	if err := db.Where("user_id = ? AND meal_time >= ?", userID, now.Add(-recommendationLookback)).
		Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch meals: %w", err)
	}

	var latest models.MolecularBalance
	var deficiencies []string
	if err := db.Where("user_id = ?", userID).Order("date DESC").First(&latest).Error; err == nil {
		deficiencies = latest.Deficiencies
	}

	drafts, source := s.draft(ctx, &profile, meals, deficiencies)

	expires := now.Add(recommendationTTL)
	recs := make([]models.Recommendation, 0, len(drafts))
	for _, d := range drafts {
		recs = append(recs, models.Recommendation{
			UserID:      userID,
			Title:       d.Title,
			Description: d.Description,
			Category:    d.Category,
			Priority:    d.Priority,
			Source:      source,
			ExpiresAt:   &expires,
		})
	}
	if len(recs) == 0 {
		return recs, nil
	}
	if err := db.Create(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to save recommendations: %w", err)
	}
	return recs, nil
}

func (s *RecommendationService) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to update recommendation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recommendation %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *RecommendationService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Recommendation{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recommendation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recommendation %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *RecommendationService) draft(ctx context.Context, p *models.Profile, meals []models.Meal, deficiencies []string) ([]RecommendationDraft, string) {
	if s.apiKey == "" {
		fallback("openrouter", "unconfigured")
		return FallbackRecommendations(p.Lifestyle), models.RecommendationSourceFallback
	}

	drafts, err := s.complete(ctx, buildPrompt(p, averageDaily(meals), deficiencies))
	if err != nil {
		log.Warn().Err(err).Str("user_id", p.UserID).Msg("AI recommendations failed, using fallback")
		fallback("openrouter", "error")
		return FallbackRecommendations(p.Lifestyle), models.RecommendationSourceFallback
	}
	return drafts, models.RecommendationSourceAI
}

func (s *RecommendationService) complete(ctx context.Context, prompt string) ([]RecommendationDraft, error) {
	body := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: chat completion status %d: %s", models.ErrUpstream, resp.StatusCode(), resp.String())
	}

	var cr chatResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return nil, fmt.Errorf("decode chat completion: %w", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: empty chat completion", models.ErrUpstream)
	}
	return ParseRecommendations(cr.Choices[0].Message.Content)
}

// ParseRecommendations accepts either a JSON array of recommendations or an
// object with a "recommendations" array, filling missing fields with
// defaults.
func ParseRecommendations(content string) ([]RecommendationDraft, error) {
	var drafts []RecommendationDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		var wrapped struct {
			Recommendations []RecommendationDraft `json:"recommendations"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: unparseable recommendations: %v", models.ErrUpstream, err)
		}
		drafts = wrapped.Recommendations
	}

	for i := range drafts {
		d := &drafts[i]
		if d.Title == "" {
			d.Title = "Nutrition Recommendation"
		}
		if d.Category == "" {
			d.Category = "diet"
		}
		if d.Priority == "" {
			d.Priority = "medium"
		}
	}
	return drafts, nil
}

// FallbackRecommendations is the static list served when the model is
// unavailable.
func FallbackRecommendations(lifestyle nutrition.Lifestyle) []RecommendationDraft {
	recs := []RecommendationDraft{
		{
			Title:       "Increase Protein Intake",
			Description: "Based on your profile, consider adding more lean proteins like chicken, fish, or legumes to support your health goals.",
			Category:    "diet",
			Priority:    "high",
		},
		{
			Title:       "Stay Hydrated",
			Description: "Aim for at least 8 glasses of water per day to support cellular function and nutrient absorption.",
			Category:    "lifestyle",
			Priority:    "high",
		},
		{
			Title:       "Add More Vegetables",
			Description: "Include a variety of colorful vegetables in your meals for essential vitamins, minerals, and antioxidants.",
			Category:    "diet",
			Priority:    "medium",
		},
	}
	if lifestyle == nutrition.LifestyleVegan || lifestyle == nutrition.LifestyleVegetarian {
		recs = append(recs, RecommendationDraft{
			Title:       "B12 Supplementation",
			Description: "Consider taking a B12 supplement as it's primarily found in animal products.",
			Category:    "supplements",
			Priority:    "high",
		})
	}
	return recs
}

// dailyAverage is the rounded per-day macro intake over a set of meals.
type dailyAverage struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// averageDaily assumes three meals per day.
func averageDaily(meals []models.Meal) dailyAverage {
	if len(meals) == 0 {
		return dailyAverage{}
	}
	sums := map[string]float64{}
	for _, m := range meals {
		for _, n := range m.TotalNutrition.Macronutrients {
			sums[n.Name] += n.Amount
		}
	}
	days := math.Ceil(float64(len(meals)) / mealsPerDay)
	avg := func(name string) float64 { return math.Round(sums[name] / days) }

	return dailyAverage{
		Calories: avg(nutrition.NameCalories),
		Protein:  avg(nutrition.NameProtein),
		Carbs:    avg(nutrition.NameCarbohydrates),
		Fat:      avg(nutrition.NameFat),
		Fiber:    avg(nutrition.NameFiber),
	}
}

func buildPrompt(p *models.Profile, avg dailyAverage, deficiencies []string) string {
	avgJSON, _ := json.MarshalIndent(avg, "", "  ")

	var sb strings.Builder
	sb.WriteString("You are a molecular nutrition expert. Analyze this user's profile and recent nutrition data to provide personalized recommendations.\n\n")
	sb.WriteString("User Profile:\n")
	fmt.Fprintf(&sb, "- Age: %d\n", p.Age)
	fmt.Fprintf(&sb, "- Sex: %s\n", p.Sex)
	fmt.Fprintf(&sb, "- Lifestyle: %s\n", p.Lifestyle)
	fmt.Fprintf(&sb, "- Health Goals: %s\n", strings.Join(p.HealthGoals, ", "))
	fmt.Fprintf(&sb, "- Medical History: %s\n\n", strings.Join(p.MedicalHistory, ", "))
	fmt.Fprintf(&sb, "Recent Average Daily Nutrition:\n%s\n\n", avgJSON)
	if len(deficiencies) > 0 {
		fmt.Fprintf(&sb, "Current Deficiencies: %s\n\n", strings.Join(deficiencies, ", "))
	}
	sb.WriteString("Provide 3-5 specific, actionable nutrition recommendations. For each recommendation, include:\n")
	sb.WriteString("1. A clear title\n2. A detailed description with specific foods or actions\n")
	sb.WriteString("3. Category (diet, supplements, lifestyle, or exercise)\n4. Priority (low, medium, or high)\n\n")
	sb.WriteString(`Format your response as a JSON object: {"recommendations": [...]}.`)
	return sb.String()
}
