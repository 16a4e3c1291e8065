package nutrition

import "errors"

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	// Sanity checks to avoid garbage input
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}

	h := heightCm / 100.0 // to meters
	return weightKg / (h * h), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}

// bmiCalorieAdjustment nudges the calorie baseline for the two extreme
// brackets. It applies to every valid profile; the plausibility range of
// CalculateBMI only guards the displayed value.
func bmiCalorieAdjustment(heightCm, weightKg float64) float64 {
	if heightCm <= 0 || weightKg <= 0 {
		return 0
	}
	h := heightCm / 100.0
	bmi := weightKg / (h * h)
	switch {
	case bmi < 18.5:
		return 200
	case bmi > 30:
		return -400
	default:
		return 0
	}
}
