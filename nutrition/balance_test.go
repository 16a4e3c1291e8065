package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Monotonic(t *testing.T) {
	cases := []struct {
		current float64
		want    NutrientStatus
	}{
		{100, StatusExcellent},
		{250, StatusExcellent},
		{80, StatusGood},
		{60, StatusWarning},
		{40, StatusPoor},
		{39.9, StatusCritical},
		{0, StatusCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.current, 100, NameProtein), "current=%v", tc.current)
	}
}

func TestStatus_BandForCaloriesAndFat(t *testing.T) {
	cases := []struct {
		pct  float64
		want NutrientStatus
	}{
		{100, StatusExcellent},
		{90, StatusExcellent},
		{110, StatusExcellent},
		{85, StatusGood},
		{120, StatusGood},
		{125, StatusWarning},
		{70, StatusWarning},
		{135, StatusPoor},
		{60, StatusPoor},
		{150, StatusCritical},
		{50, StatusCritical},
	}
	for _, name := range []string{NameCalories, NameFat} {
		for _, tc := range cases {
			assert.Equal(t, tc.want, Status(tc.pct*20, 2000, name), "%s at %v%%", name, tc.pct)
		}
	}

	// Overshooting a monotonic nutrient is still excellent.
	assert.Equal(t, StatusExcellent, Status(300, 100, NameProtein))
	assert.Equal(t, StatusCritical, Status(300, 100, NameFat))
}

func TestStatus_NonPositiveTargetIsCritical(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, StatusCritical, Status(1800, 0, NameCalories))
		assert.Equal(t, StatusCritical, Status(0, 0, NameProtein))
		assert.Equal(t, StatusCritical, Status(10, -5, "Iron"))
		assert.Equal(t, StatusCritical, Status(math.Inf(1), 10, "Iron"))
	})
}

func TestStatus_ExactTarget(t *testing.T) {
	assert.Equal(t, StatusExcellent, Status(96, 96, NameProtein))
	assert.Equal(t, StatusCritical, Status(0, 96, NameProtein))
}

func TestScore(t *testing.T) {
	targets := []NutrientTarget{
		{Name: NameProtein, Amount: 100},
		{Name: "Iron", Amount: 10},
	}

	t.Run("empty nutrients", func(t *testing.T) {
		assert.Equal(t, 0, Score(nil, targets))
		assert.Equal(t, 0, Score([]NutrientAmount{}, targets))
	})

	t.Run("no targets", func(t *testing.T) {
		assert.Equal(t, 0, Score([]NutrientAmount{{Name: NameProtein, Amount: 100}}, nil))
	})

	t.Run("unmatched contributes zero", func(t *testing.T) {
		got := Score([]NutrientAmount{
			{Name: NameProtein, Amount: 100},
			{Name: "Selenium", Amount: 55},
		}, targets)
		assert.Equal(t, 50, got)
	})

	t.Run("piecewise linear", func(t *testing.T) {
		for pct, want := range map[float64]int{150: 100, 100: 100, 90: 90, 70: 70, 50: 50, 25: 25, 0: 0} {
			assert.Equal(t, want, Score([]NutrientAmount{{Name: NameProtein, Amount: pct}}, targets), "pct=%v", pct)
		}
	})

	t.Run("rounded mean", func(t *testing.T) {
		got := Score([]NutrientAmount{
			{Name: NameProtein, Amount: 100},
			{Name: "Iron", Amount: 8.5},
		}, targets)
		assert.Equal(t, 93, got) // 92.5 rounds up
	})

	t.Run("zero target", func(t *testing.T) {
		got := Score([]NutrientAmount{{Name: "Iron", Amount: 5}}, []NutrientTarget{{Name: "Iron", Amount: 0}})
		assert.Equal(t, 0, got)
	})
}

func TestDeficiencies(t *testing.T) {
	targets := []NutrientTarget{
		{Name: "Iron", Amount: 10},
		{Name: "Calcium", Amount: 1000},
		{Name: "Vitamin C", Amount: 90},
		{Name: "Zinc", Amount: 8},
	}
	current := []NutrientAmount{
		{Name: "Zinc", Amount: 3},       // 37.5% critical
		{Name: "Iron", Amount: 4},       // 40% poor
		{Name: "Vitamin C", Amount: 60}, // 66% warning
	}

	assert.Equal(t, []string{"Iron", "Calcium", "Zinc"}, Deficiencies(current, targets))

	all := Deficiencies(nil, targets)
	assert.Equal(t, []string{"Iron", "Calcium", "Vitamin C", "Zinc"}, all)

	none := Deficiencies(current, nil)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeficiencies_IgnoresBandPolicy(t *testing.T) {
	// 200% of Fat is critical under the band policy but not a deficiency.
	got := Deficiencies(
		[]NutrientAmount{{Name: NameFat, Amount: 200}},
		[]NutrientTarget{{Name: NameFat, Amount: 100}},
	)
	assert.Empty(t, got)
}

func TestEvaluate(t *testing.T) {
	p := baseProfile()
	macros := MacroTargets(p)
	micros := MicroTargets(p)

	totals := AggregateDaily([]Meal{{FoodItems: []FoodItem{{
		Macronutrients: map[string]float64{"protein": 96, "calories": 2158},
		Micronutrients: []Micronutrient{{Name: "Iron", Amount: 18}, {Name: "Calcium", Amount: 300}},
	}}}})

	got := Evaluate(totals, macros, micros)
	require.Len(t, got.Nutrients, len(macros)+len(micros))

	assert.Equal(t, NameCalories, got.Nutrients[0].Name)
	assert.Equal(t, StatusExcellent, got.Nutrients[0].Status)
	assert.Equal(t, 100.0, got.Nutrients[0].Percent)

	carbs := got.Nutrients[2]
	assert.Equal(t, NameCarbohydrates, carbs.Name)
	assert.Zero(t, carbs.Current)
	assert.Equal(t, StatusCritical, carbs.Status)

	// Calories and Protein at 100, Iron at 100, Calcium at 30.
	assert.Equal(t, 83, got.Score)

	assert.NotContains(t, got.Deficiencies, "Iron")
	assert.Contains(t, got.Deficiencies, "Calcium")
	assert.Contains(t, got.Deficiencies, "Vitamin C")
	assert.NotContains(t, got.Deficiencies, NameCarbohydrates, "macros are not reported as deficiencies")
}
