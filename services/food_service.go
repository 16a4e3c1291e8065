package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"nutribalance/metrics"
	"nutribalance/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// mockFoods answers lookups when the food database API is unavailable.
var mockFoods = map[string]models.Food{
	"chicken_breast": {
		ID: "chicken_breast", Name: "Chicken Breast",
		Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6, Fiber: 0,
		Vitamins: map[string]float64{"B6": 0.5, "B12": 0.3, "niacin": 14.8},
		Minerals: map[string]float64{"selenium": 27.6, "phosphorus": 228},
	},
	"brown_rice": {
		ID: "brown_rice", Name: "Brown Rice",
		Calories: 216, Protein: 5, Carbs: 45, Fat: 1.8, Fiber: 3.5,
		Vitamins: map[string]float64{"B1": 0.2, "B6": 0.3},
		Minerals: map[string]float64{"magnesium": 86, "manganese": 1.8},
	},
	"broccoli": {
		ID: "broccoli", Name: "Broccoli",
		Calories: 55, Protein: 3.7, Carbs: 11.2, Fat: 0.6, Fiber: 3.8,
		Vitamins: map[string]float64{"C": 135, "K": 141, "folate": 108},
		Minerals: map[string]float64{"potassium": 505, "calcium": 62},
	},
}

type FoodService struct {
	eda *EdamamService
	rek *RekognitionService
}

// NewFoodService takes an optional Rekognition service; without it image
// recognition is unavailable.
func NewFoodService(eda *EdamamService, rek *RekognitionService) *FoodService {
	return &FoodService{eda: eda, rek: rek}
}

type Recognition struct {
	Labels []string      `json:"labels"`
	Label  string        `json:"label,omitempty"`
	Foods  []models.Food `json:"foods"`
}

// Search looks foods up by name, falling back to the built-in list when the
// API is not configured or fails.
func (s *FoodService) Search(ctx context.Context, query string) ([]models.Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", models.ErrValidation)
	}

	if s.eda.Configured() {
		foods, err := s.eda.SearchFoods(ctx, query)
		if err == nil {
			return foods, nil
		}
		log.Warn().Err(err).Str("query", query).Msg("edamam search failed, using mock data")
		fallback("edamam", "error")
	} else {
		fallback("edamam", "unconfigured")
	}
	return searchMock(query), nil
}

// Nutrition returns per-100 g nutrients for one food.
func (s *FoodService) Nutrition(ctx context.Context, foodID string) (*models.Food, error) {
	if s.eda.Configured() {
		food, err := s.eda.FoodNutrition(ctx, foodID)
		if err == nil {
			return food, nil
		}
		log.Warn().Err(err).Str("food_id", foodID).Msg("edamam lookup failed, using mock data")
		fallback("edamam", "error")
	} else {
		fallback("edamam", "unconfigured")
	}

	food, ok := mockFoods[foodID]
	if !ok {
		return nil, fmt.Errorf("food %q: %w", foodID, models.ErrNotFound)
	}
	return &food, nil
}

// Recognize detects labels in an image and searches foods for the first
// label that yields any.
func (s *FoodService) Recognize(ctx context.Context, dataURI string) (*Recognition, error) {
	if s.rek == nil {
		return nil, fmt.Errorf("image recognition is not configured: %w", models.ErrUnavailable)
	}
	labels, err := s.rek.RecognizeLabels(ctx, dataURI)
	if err != nil {
		return nil, err
	}

	out := &Recognition{Labels: labels, Foods: []models.Food{}}
	for _, label := range labels {
		foods, err := s.Search(ctx, label)
		if err != nil {
			return nil, err
		}
		if len(foods) > 0 {
			out.Label = label
			out.Foods = foods
			break
		}
	}
	return out, nil
}

// Calculate sums macros and the vitamin and mineral maps of foods.
func Calculate(foods []models.Food) models.NutritionTotals {
	t := models.NutritionTotals{
		Vitamins: map[string]float64{},
		Minerals: map[string]float64{},
	}
	for _, f := range foods {
		t.Calories += f.Calories
		t.Protein += f.Protein
		t.Carbs += f.Carbs
		t.Fat += f.Fat
		t.Fiber += f.Fiber
		for k, v := range f.Vitamins {
			t.Vitamins[k] += v
		}
		for k, v := range f.Minerals {
			t.Minerals[k] += v
		}
	}
	return t
}

func searchMock(query string) []models.Food {
	q := strings.ToLower(query)
	out := []models.Food{}
	for _, f := range mockFoods {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func fallback(upstream, reason string) {
	metrics.Inc(metrics.UpstreamFallbacks, prometheus.Labels{"upstream": upstream, "reason": reason})
}
