package nutrition

import "math"

const (
	activityFactor = 1.55 // moderate activity

	proteinPerKg = 1.6
	fiberPerKg   = 0.4

	carbShareOfRemainder = 0.55
	fatShareOfRemainder  = 0.45

	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9

	plantIronFactor = 1.8
	plantB12Target  = 2.8
)

// Macro target names, in output order.
const (
	NameCalories      = "Calories"
	NameProtein       = "Protein"
	NameCarbohydrates = "Carbohydrates"
	NameFat           = "Fat"
	NameFiber         = "Fiber"
)

// BaselineCalories estimates daily energy need with the Harris-Benedict BMR
// times a moderate activity factor. Anything other than male uses the
// female equation.
func BaselineCalories(p Profile) float64 {
	w, h, a := p.Weight, p.Height, float64(p.Age)
	var bmr float64
	if p.Sex == SexMale {
		bmr = 88.362 + 13.397*w + 4.799*h - 5.677*a
	} else {
		bmr = 447.593 + 9.247*w + 3.098*h - 4.330*a
	}
	return roundHalfUp(bmr * activityFactor)
}

// MacroTargets returns Calories, Protein, Carbohydrates, Fat and Fiber targets.
func MacroTargets(p Profile) []NutrientTarget {
	calories := BaselineCalories(p)
	if p.hasGoal(GoalMuscleGain) {
		calories += 300
	}
	if p.hasGoal(GoalWeightLoss) {
		calories -= 300
	}
	calories = nonNegative(calories + bmiCalorieAdjustment(p.Height, p.Weight))

	protein := nonNegative(roundHalfUp(p.Weight * proteinPerKg))
	remaining := nonNegative(calories - protein*kcalPerGramProtein)
	carbs := roundHalfUp(remaining * carbShareOfRemainder / kcalPerGramCarb)
	fat := roundHalfUp(remaining * fatShareOfRemainder / kcalPerGramFat)
	fiber := nonNegative(roundHalfUp(p.Weight * fiberPerKg))

	return []NutrientTarget{
		{Name: NameCalories, Amount: calories, Unit: "kcal", Calories: calories},
		{Name: NameProtein, Amount: protein, Unit: "g", Calories: protein * kcalPerGramProtein},
		{Name: NameCarbohydrates, Amount: carbs, Unit: "g", Calories: carbs * kcalPerGramCarb},
		{Name: NameFat, Amount: fat, Unit: "g", Calories: fat * kcalPerGramFat},
		{Name: NameFiber, Amount: fiber, Unit: "g"},
	}
}

// MicroTargets returns the RDA table adjusted for sex, lifestyle and medical
// history. Conditional targets are appended after the base table.
func MicroTargets(p Profile) []NutrientTarget {
	male := p.Sex == SexMale
	female := p.Sex == SexFemale

	targets := []NutrientTarget{
		{Name: "Iron", Amount: pick(female, 18, 8), Unit: "mg", Category: CategoryMineral},
		{Name: "Calcium", Amount: 1000, Unit: "mg", Category: CategoryMineral},
		{Name: "Vitamin C", Amount: 90, Unit: "mg", Category: CategoryVitamin},
		{Name: "Vitamin D", Amount: 600, Unit: "IU", Category: CategoryVitamin},
		{Name: "Vitamin B12", Amount: 2.4, Unit: "mcg", Category: CategoryVitamin},
		{Name: "Zinc", Amount: pick(male, 11, 8), Unit: "mg", Category: CategoryMineral},
		{Name: "Magnesium", Amount: pick(male, 420, 320), Unit: "mg", Category: CategoryMineral},
		{Name: "Folate", Amount: 400, Unit: "mcg", Category: CategoryVitamin},
		{Name: "Vitamin A", Amount: pick(male, 900, 700), Unit: "mcg", Category: CategoryVitamin},
		{Name: "Vitamin E", Amount: 15, Unit: "mg", Category: CategoryVitamin},
	}

	if p.Lifestyle == LifestyleVegan || p.Lifestyle == LifestyleVegetarian {
		for i := range targets {
			switch targets[i].Name {
			case "Vitamin B12":
				targets[i].Amount = plantB12Target
			case "Iron":
				targets[i].Amount *= plantIronFactor
			}
		}
	}

	if p.hasCondition(ConditionDiabetes) {
		targets = append(targets, NutrientTarget{Name: "Chromium", Amount: 35, Unit: "mcg", Category: CategoryMineral})
	}
	if p.hasCondition(ConditionCardiovascular) {
		targets = append(targets, NutrientTarget{Name: "Omega-3", Amount: 1000, Unit: "mg", Category: CategoryFattyAcid})
	}
	return targets
}

func pick(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// roundHalfUp rounds .5 towards +Inf, matching how the dashboard rounds.
func roundHalfUp(v float64) float64 { return math.Floor(v + 0.5) }

func round1(v float64) float64 { return math.Floor(v*10+0.5) / 10 }
