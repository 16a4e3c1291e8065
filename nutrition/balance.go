package nutrition

import "math"

// bandNutrients are scored by distance from 100% in both directions;
// overshooting them is as bad as falling short.
var bandNutrients = map[string]bool{
	NameCalories: true,
	NameFat:      true,
}

func percentOf(current, target float64) (float64, bool) {
	if target <= 0 {
		return 0, false
	}
	p := 100 * current / target
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

// Status classifies current intake against a target. A zero or negative
// target is reported as critical.
func Status(current, target float64, name string) NutrientStatus {
	pct, ok := percentOf(current, target)
	if !ok {
		return StatusCritical
	}
	if bandNutrients[name] {
		return bandStatus(pct)
	}
	return monotonicStatus(pct)
}

func bandStatus(pct float64) NutrientStatus {
	switch {
	case pct >= 90 && pct <= 110:
		return StatusExcellent
	case pct >= 80 && pct <= 120:
		return StatusGood
	case pct >= 70 && pct <= 130:
		return StatusWarning
	case pct >= 60 && pct <= 140:
		return StatusPoor
	default:
		return StatusCritical
	}
}

func monotonicStatus(pct float64) NutrientStatus {
	switch {
	case pct >= 100:
		return StatusExcellent
	case pct >= 80:
		return StatusGood
	case pct >= 60:
		return StatusWarning
	case pct >= 40:
		return StatusPoor
	default:
		return StatusCritical
	}
}

// nutrientScore maps a percentage of target onto 0..100. Each band between
// 40% and 100% is linear with slope one, so the score equals the percentage
// there; above 100% it saturates and below 0 it clamps.
func nutrientScore(pct float64) float64 {
	switch {
	case pct >= 100:
		return 100
	case pct >= 80:
		return 80 + (pct - 80)
	case pct >= 60:
		return 60 + (pct - 60)
	case pct >= 40:
		return 40 + (pct - 40)
	default:
		return math.Max(0, pct)
	}
}

// Score computes the Molecular Balance Score: the rounded mean of
// per-nutrient scores. Nutrients without a matching target score 0.
func Score(nutrients []NutrientAmount, targets []NutrientTarget) int {
	if len(nutrients) == 0 {
		return 0
	}
	byName := indexTargets(targets)

	var sum float64
	for _, n := range nutrients {
		t, ok := byName[n.Name]
		if !ok {
			continue
		}
		pct, ok := percentOf(n.Amount, t.Amount)
		if !ok {
			continue
		}
		sum += nutrientScore(pct)
	}
	return int(roundHalfUp(sum / float64(len(nutrients))))
}

// Deficiencies lists, in target order, every target that was not consumed
// at all or whose monotonic status is poor or critical.
func Deficiencies(current []NutrientAmount, targets []NutrientTarget) []string {
	byName := make(map[string]NutrientAmount, len(current))
	for _, c := range current {
		if _, dup := byName[c.Name]; !dup {
			byName[c.Name] = c
		}
	}

	out := []string{}
	for _, t := range targets {
		c, ok := byName[t.Name]
		if !ok {
			out = append(out, t.Name)
			continue
		}
		pct, ok := percentOf(c.Amount, t.Amount)
		if !ok {
			out = append(out, t.Name)
			continue
		}
		if s := monotonicStatus(pct); s == StatusPoor || s == StatusCritical {
			out = append(out, t.Name)
		}
	}
	return out
}

// NutrientReport is one row of the daily dashboard.
type NutrientReport struct {
	Name    string         `json:"name"`
	Current float64        `json:"current"`
	Target  float64        `json:"target"`
	Unit    string         `json:"unit"`
	Percent float64        `json:"percent"`
	Status  NutrientStatus `json:"status"`
}

// Balance is the scored view of one day's intake.
type Balance struct {
	Score        int              `json:"score"`
	Nutrients    []NutrientReport `json:"nutrients"`
	Deficiencies []string         `json:"deficiencies"`
}

// Evaluate scores a day's totals against macro and micro targets. Every
// target gets a report row, with zero intake when nothing was logged.
func Evaluate(totals DailyTotals, macroTargets, microTargets []NutrientTarget) Balance {
	all := totals.All()
	targets := make([]NutrientTarget, 0, len(macroTargets)+len(microTargets))
	targets = append(targets, macroTargets...)
	targets = append(targets, microTargets...)

	current := make(map[string]float64, len(all))
	for _, n := range all {
		current[n.Name] += n.Amount
	}

	reports := make([]NutrientReport, 0, len(targets))
	for _, t := range targets {
		c := current[t.Name]
		pct, _ := percentOf(c, t.Amount)
		reports = append(reports, NutrientReport{
			Name:    t.Name,
			Current: c,
			Target:  t.Amount,
			Unit:    t.Unit,
			Percent: round1(pct),
			Status:  Status(c, t.Amount, t.Name),
		})
	}

	return Balance{
		Score:        Score(all, targets),
		Nutrients:    reports,
		Deficiencies: Deficiencies(totals.Micronutrients, microTargets),
	}
}

func indexTargets(targets []NutrientTarget) map[string]NutrientTarget {
	m := make(map[string]NutrientTarget, len(targets))
	for _, t := range targets {
		if _, dup := m[t.Name]; !dup {
			m[t.Name] = t
		}
	}
	return m
}
