package nutrition

import (
	"sort"
	"strings"
)

var macroDisplayNames = map[string]string{
	"protein":       NameProtein,
	"carbohydrates": NameCarbohydrates,
	"fat":           NameFat,
	"fiber":         NameFiber,
	"calories":      NameCalories,
}

var nutrientUnits = map[string]string{
	"protein":       "g",
	"carbohydrates": "g",
	"fat":           "g",
	"fiber":         "g",
	"calories":      "kcal",
	"Iron":          "mg",
	"Calcium":       "mg",
	"Vitamin C":     "mg",
	"Vitamin D":     "IU",
	"Vitamin B12":   "mcg",
	"Zinc":          "mg",
	"Magnesium":     "mg",
	"Folate":        "mcg",
	"Vitamin A":     "mcg",
	"Vitamin E":     "mg",
	"Chromium":      "mcg",
	"Omega-3":       "mg",
}

var micronutrientCategories = map[string]Category{
	"Vitamin C":   CategoryVitamin,
	"Vitamin D":   CategoryVitamin,
	"Vitamin B12": CategoryVitamin,
	"Folate":      CategoryVitamin,
	"Vitamin A":   CategoryVitamin,
	"Vitamin E":   CategoryVitamin,
	"Iron":        CategoryMineral,
	"Calcium":     CategoryMineral,
	"Zinc":        CategoryMineral,
	"Magnesium":   CategoryMineral,
	"Chromium":    CategoryMineral,
	"Omega-3":     CategoryFattyAcid,
}

// UnitFor resolves the display unit for a nutrient name, "g" when unknown.
func UnitFor(name string) string {
	if u, ok := nutrientUnits[name]; ok {
		return u
	}
	if u, ok := nutrientUnits[strings.ToLower(name)]; ok {
		return u
	}
	return "g"
}

// CategoryFor resolves a micronutrient category. Unknown names fall back to
// mineral and report ok=false so callers can tell the guess from a fact.
func CategoryFor(name string) (Category, bool) {
	if c, ok := micronutrientCategories[name]; ok {
		return c, true
	}
	return CategoryMineral, false
}

func displayMacroName(raw string) string {
	if n, ok := macroDisplayNames[strings.ToLower(raw)]; ok {
		return n
	}
	return raw
}

// running keeps first-seen order so output follows the order nutrients
// were logged.
type running struct {
	order []string
	sums  map[string]float64
}

func newRunning() *running { return &running{sums: map[string]float64{}} }

func (r *running) add(name string, v float64) {
	if _, ok := r.sums[name]; !ok {
		r.order = append(r.order, name)
	}
	r.sums[name] += v
}

// AggregateDaily sums every food item across meals into daily totals.
// Missing maps and lists count as zero. Amounts are rounded to one decimal.
func AggregateDaily(meals []Meal) DailyTotals {
	macros, micros := newRunning(), newRunning()
	for _, m := range meals {
		for _, item := range m.FoodItems {
			for _, raw := range orderedMacroKeys(item.Macronutrients) {
				macros.add(displayMacroName(raw), item.Macronutrients[raw])
			}
			for _, mn := range item.Micronutrients {
				micros.add(mn.Name, mn.Amount)
			}
		}
	}

	totals := DailyTotals{
		Macronutrients: make([]NutrientAmount, 0, len(macros.order)),
		Micronutrients: make([]NutrientAmount, 0, len(micros.order)),
	}
	for _, name := range macros.order {
		amount := round1(macros.sums[name])
		na := NutrientAmount{Name: name, Amount: amount, Unit: UnitFor(name)}
		if name == NameCalories {
			na.Calories = amount
		}
		totals.Macronutrients = append(totals.Macronutrients, na)
	}
	for _, name := range micros.order {
		cat, known := CategoryFor(name)
		totals.Micronutrients = append(totals.Micronutrients, NutrientAmount{
			Name:          name,
			Amount:        round1(micros.sums[name]),
			Unit:          UnitFor(name),
			Category:      cat,
			CategoryKnown: known,
		})
	}
	return totals
}

// orderedMacroKeys lists known macronutrients first, then anything else
// alphabetically, so totals do not depend on map iteration order.
func orderedMacroKeys(m map[string]float64) []string {
	var known, rest []string
	for k := range m {
		if _, ok := macroDisplayNames[strings.ToLower(k)]; ok {
			known = append(known, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(known, func(i, j int) bool {
		ri, rj := macroRank[strings.ToLower(known[i])], macroRank[strings.ToLower(known[j])]
		if ri != rj {
			return ri < rj
		}
		return known[i] < known[j]
	})
	sort.Strings(rest)
	return append(known, rest...)
}

var macroRank = map[string]int{"calories": 0, "protein": 1, "carbohydrates": 2, "fat": 3, "fiber": 4}
