package models

// Food is a food database entry: nutrients per 100 g, as returned by the
// food search and lookup endpoints. It is not persisted.
type Food struct {
	ID       string             `json:"id"`
	Name     string             `json:"name,omitempty"`
	Calories float64            `json:"calories"`
	Protein  float64            `json:"protein"`
	Carbs    float64            `json:"carbs"`
	Fat      float64            `json:"fat"`
	Fiber    float64            `json:"fiber"`
	Vitamins map[string]float64 `json:"vitamins,omitempty"`
	Minerals map[string]float64 `json:"minerals,omitempty"`
}

// NutritionTotals is the sum of a list of foods.
type NutritionTotals struct {
	Calories float64            `json:"calories"`
	Protein  float64            `json:"protein"`
	Carbs    float64            `json:"carbs"`
	Fat      float64            `json:"fat"`
	Fiber    float64            `json:"fiber"`
	Vitamins map[string]float64 `json:"vitamins"`
	Minerals map[string]float64 `json:"minerals"`
}
