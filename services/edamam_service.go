package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nutribalance/models"

	"github.com/go-resty/resty/v2"
)

const gramMeasureURI = "http://www.edamam.com/ontologies/edamam.owl#Measure_gram"

// Edamam nutrient codes mapped to the vitamin and mineral keys the API
// returns to clients.
var (
	edamamVitamins = map[string]string{
		"A": "VITA_RAE", "C": "VITC", "D": "VITD", "E": "TOCPHA", "K": "VITK1",
		"B1": "THIA", "B2": "RIBF", "B3": "NIA", "B6": "VITB6A", "B12": "VITB12",
		"folate": "FOLDFE",
	}
	edamamMinerals = map[string]string{
		"calcium": "CA", "iron": "FE", "magnesium": "MG", "phosphorus": "P",
		"potassium": "K", "sodium": "NA", "zinc": "ZN", "selenium": "SE",
	}
)

type EdamamService struct {
	client *resty.Client
	appID  string
	appKey string
}

func NewEdamamService(baseURL, appID, appKey string) *EdamamService {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &EdamamService{client: c, appID: appID, appKey: appKey}
}

// Configured reports whether API credentials are set.
func (s *EdamamService) Configured() bool {
	return s != nil && s.appID != "" && s.appKey != ""
}

type parserResponse struct {
	Hints []struct {
		Food struct {
			FoodID    string             `json:"foodId"`
			Label     string             `json:"label"`
			Nutrients map[string]float64 `json:"nutrients"`
		} `json:"food"`
	} `json:"hints"`
}

type nutrientsResponse struct {
	TotalNutrients map[string]struct {
		Quantity float64 `json:"quantity"`
	} `json:"totalNutrients"`
}

// SearchFoods queries the food database parser for matching foods.
func (s *EdamamService) SearchFoods(ctx context.Context, query string) ([]models.Food, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"app_id":  s.appID,
			"app_key": s.appKey,
			"ingr":    query,
		}).
		Get("/api/food-database/v2/parser")
	if err != nil {
		return nil, fmt.Errorf("edamam parser request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: edamam parser status %d: %s", models.ErrUpstream, resp.StatusCode(), resp.String())
	}

	var pr parserResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("decode edamam parser response: %w", err)
	}

	foods := make([]models.Food, 0, len(pr.Hints))
	for _, h := range pr.Hints {
		n := h.Food.Nutrients
		foods = append(foods, models.Food{
			ID:       h.Food.FoodID,
			Name:     h.Food.Label,
			Calories: n["ENERC_KCAL"],
			Protein:  n["PROCNT"],
			Carbs:    n["CHOCDF"],
			Fat:      n["FAT"],
			Fiber:    n["FIBTG"],
		})
	}
	return foods, nil
}

// FoodNutrition returns the nutrients of 100 g of the given food.
func (s *EdamamService) FoodNutrition(ctx context.Context, foodID string) (*models.Food, error) {
	body := map[string]any{
		"ingredients": []map[string]any{{
			"quantity":   100,
			"measureURI": gramMeasureURI,
			"foodId":     foodID,
		}},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"app_id": s.appID, "app_key": s.appKey}).
		SetBody(body).
		Post("/api/food-database/v2/nutrients")
	if err != nil {
		return nil, fmt.Errorf("edamam nutrients request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: edamam nutrients status %d: %s", models.ErrUpstream, resp.StatusCode(), resp.String())
	}

	var nr nutrientsResponse
	if err := json.Unmarshal(resp.Body(), &nr); err != nil {
		return nil, fmt.Errorf("decode edamam nutrients response: %w", err)
	}
	q := func(code string) float64 { return nr.TotalNutrients[code].Quantity }

	return &models.Food{
		ID:       foodID,
		Calories: q("ENERC_KCAL"),
		Protein:  q("PROCNT"),
		Carbs:    q("CHOCDF"),
		Fat:      q("FAT"),
		Fiber:    q("FIBTG"),
		Vitamins: extract(edamamVitamins, q),
		Minerals: extract(edamamMinerals, q),
	}, nil
}

func extract(codes map[string]string, q func(string) float64) map[string]float64 {
	out := make(map[string]float64, len(codes))
	for key, code := range codes {
		out[key] = q(code)
	}
	return out
}
