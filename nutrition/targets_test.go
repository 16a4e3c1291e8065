package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseProfile() Profile {
	return Profile{
		Age:       28,
		Sex:       SexFemale,
		Height:    165,
		Weight:    60,
		Lifestyle: LifestyleOmnivore,
	}
}

func targetByName(targets []NutrientTarget, name string) (NutrientTarget, bool) {
	for _, t := range targets {
		if t.Name == name {
			return t, true
		}
	}
	return NutrientTarget{}, false
}

func TestMacroTargets_ShapeAndNonNegative(t *testing.T) {
	profiles := []Profile{
		baseProfile(),
		{Age: 45, Sex: SexMale, Height: 180, Weight: 82, Lifestyle: LifestyleKeto},
		{Age: 70, Sex: SexOther, Height: 150, Weight: 110, Lifestyle: LifestylePaleo, HealthGoals: []string{GoalWeightLoss}},
		{Age: 19, Sex: SexMale, Height: 190, Weight: 55, Lifestyle: LifestyleVegan, HealthGoals: []string{GoalMuscleGain}},
		// implausible but valid input must not produce negatives
		{Age: 120, Sex: SexFemale, Height: 1, Weight: 1, Lifestyle: LifestyleOmnivore, HealthGoals: []string{GoalWeightLoss}},
	}

	for _, p := range profiles {
		require.NoError(t, p.Validate())
		got := MacroTargets(p)
		require.Len(t, got, 5)

		names := make([]string, 0, len(got))
		for _, tgt := range got {
			names = append(names, tgt.Name)
			assert.GreaterOrEqual(t, tgt.Amount, 0.0, "%s for %+v", tgt.Name, p)
		}
		assert.Equal(t, []string{NameCalories, NameProtein, NameCarbohydrates, NameFat, NameFiber}, names)
	}
}

func TestMacroTargets_HarrisBenedict(t *testing.T) {
	got := MacroTargets(baseProfile())

	// BMR 1392.343 * 1.55 = 2158.13, normal BMI so no bracket adjustment.
	assert.Equal(t, 2158.0, got[0].Amount)
	assert.Equal(t, "kcal", got[0].Unit)
	assert.Equal(t, 2158.0, got[0].Calories)

	assert.Equal(t, 96.0, got[1].Amount)
	assert.Equal(t, 384.0, got[1].Calories)

	// remaining 1774 kcal split 55/45
	assert.Equal(t, 244.0, got[2].Amount)
	assert.Equal(t, 976.0, got[2].Calories)
	assert.Equal(t, 89.0, got[3].Amount)
	assert.Equal(t, 801.0, got[3].Calories)

	assert.Equal(t, 24.0, got[4].Amount)
	assert.Zero(t, got[4].Calories)
}

func TestMacroTargets_GoalAdjustments(t *testing.T) {
	base := MacroTargets(baseProfile())[0].Amount

	gain := baseProfile()
	gain.HealthGoals = []string{GoalMuscleGain}
	assert.Equal(t, base+300, MacroTargets(gain)[0].Amount)

	loss := baseProfile()
	loss.HealthGoals = []string{GoalWeightLoss}
	assert.Equal(t, base-300, MacroTargets(loss)[0].Amount)

	both := baseProfile()
	both.HealthGoals = []string{GoalMuscleGain, GoalWeightLoss}
	assert.Equal(t, base, MacroTargets(both)[0].Amount)
}

func TestMacroTargets_BMIBrackets(t *testing.T) {
	under := Profile{Age: 30, Sex: SexMale, Height: 180, Weight: 55, Lifestyle: LifestyleOmnivore}
	assert.Equal(t, BaselineCalories(under)+200, MacroTargets(under)[0].Amount)

	obese := Profile{Age: 30, Sex: SexMale, Height: 170, Weight: 100, Lifestyle: LifestyleOmnivore}
	assert.Equal(t, BaselineCalories(obese)-400, MacroTargets(obese)[0].Amount)
}

func TestMacroTargets_EmptyAndNilSetsMatch(t *testing.T) {
	withNil := baseProfile()
	withEmpty := baseProfile()
	withEmpty.HealthGoals = []string{}
	withEmpty.MedicalHistory = []string{}

	assert.Equal(t, MacroTargets(withNil), MacroTargets(withEmpty))
	assert.Equal(t, MicroTargets(withNil), MicroTargets(withEmpty))
}

func TestMicroTargets_BaseTableOrder(t *testing.T) {
	got := MicroTargets(baseProfile())
	names := make([]string, 0, len(got))
	for _, tgt := range got {
		names = append(names, tgt.Name)
	}
	assert.Equal(t, []string{
		"Iron", "Calcium", "Vitamin C", "Vitamin D", "Vitamin B12",
		"Zinc", "Magnesium", "Folate", "Vitamin A", "Vitamin E",
	}, names)
}

func TestMicroTargets_SexConditional(t *testing.T) {
	female := MicroTargets(baseProfile())
	male := baseProfile()
	male.Sex = SexMale
	maleTargets := MicroTargets(male)

	for _, tc := range []struct {
		name         string
		female, male float64
	}{
		{"Iron", 18, 8},
		{"Zinc", 8, 11},
		{"Vitamin A", 700, 900},
		{"Magnesium", 320, 420},
	} {
		f, ok := targetByName(female, tc.name)
		require.True(t, ok)
		m, ok := targetByName(maleTargets, tc.name)
		require.True(t, ok)
		assert.Equal(t, tc.female, f.Amount, tc.name)
		assert.Equal(t, tc.male, m.Amount, tc.name)
	}
}

func TestMicroTargets_PlantBasedLifestyles(t *testing.T) {
	for _, sex := range []Sex{SexMale, SexFemale, SexOther} {
		omni := baseProfile()
		omni.Sex = sex
		baseIron, _ := targetByName(MicroTargets(omni), "Iron")

		for _, ls := range []Lifestyle{LifestyleVegan, LifestyleVegetarian} {
			p := omni
			p.Lifestyle = ls
			got := MicroTargets(p)

			b12, ok := targetByName(got, "Vitamin B12")
			require.True(t, ok)
			assert.Equal(t, 2.8, b12.Amount)

			iron, ok := targetByName(got, "Iron")
			require.True(t, ok)
			assert.InDelta(t, baseIron.Amount*1.8, iron.Amount, 1e-9, "%s/%s", sex, ls)
		}
	}
}

func TestMicroTargets_MedicalHistory(t *testing.T) {
	p := baseProfile()
	p.MedicalHistory = []string{ConditionDiabetes}
	got := MicroTargets(p)

	chromium, ok := targetByName(got, "Chromium")
	require.True(t, ok)
	assert.Equal(t, 35.0, chromium.Amount)
	assert.Equal(t, "mcg", chromium.Unit)
	assert.Equal(t, "Chromium", got[len(got)-1].Name, "conditional targets come after the base table")

	_, ok = targetByName(MicroTargets(baseProfile()), "Chromium")
	assert.False(t, ok)

	p.MedicalHistory = []string{ConditionDiabetes, ConditionCardiovascular}
	got = MicroTargets(p)
	require.Len(t, got, 12)
	assert.Equal(t, "Chromium", got[10].Name)
	assert.Equal(t, "Omega-3", got[11].Name)
	assert.Equal(t, CategoryFattyAcid, got[11].Category)
	assert.Equal(t, 1000.0, got[11].Amount)
}

func TestProfileValidate(t *testing.T) {
	ok := baseProfile()
	require.NoError(t, ok.Validate())

	cases := map[string]func(*Profile){
		"zero age":        func(p *Profile) { p.Age = 0 },
		"negative height": func(p *Profile) { p.Height = -1 },
		"zero weight":     func(p *Profile) { p.Weight = 0 },
		"bad sex":         func(p *Profile) { p.Sex = "unknown" },
		"bad lifestyle":   func(p *Profile) { p.Lifestyle = "carnivore" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := baseProfile()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProfile)
		})
	}
}

func TestCalculateBMI(t *testing.T) {
	bmi, err := CalculateBMI(180, 90)
	require.NoError(t, err)
	assert.InDelta(t, 27.78, bmi, 0.01)
	assert.Equal(t, "Overweight", BMICategory(bmi))

	_, err = CalculateBMI(0, 70)
	assert.Error(t, err)
	_, err = CalculateBMI(300, 70)
	assert.Error(t, err)

	assert.Zero(t, bmiCalorieAdjustment(0, 0))
}

func TestBMIAdjustmentOutsideDisplayRange(t *testing.T) {
	heavy := Profile{Age: 40, Sex: SexMale, Height: 180, Weight: 420, Lifestyle: LifestyleOmnivore}
	require.NoError(t, heavy.Validate())
	assert.Equal(t, BaselineCalories(heavy)-400, MacroTargets(heavy)[0].Amount)

	_, err := CalculateBMI(heavy.Height, heavy.Weight)
	assert.Error(t, err, "display BMI keeps its plausibility range")

	// no jump in calories either side of 400 kg
	below := Profile{Age: 40, Sex: SexFemale, Height: 160, Weight: 395, Lifestyle: LifestyleOmnivore}
	above := below
	above.Weight = 405
	assert.Equal(t, BaselineCalories(below)-400, MacroTargets(below)[0].Amount)
	assert.Equal(t, BaselineCalories(above)-400, MacroTargets(above)[0].Amount)
	assert.Greater(t, MacroTargets(above)[0].Amount, MacroTargets(below)[0].Amount)

	tiny := Profile{Age: 30, Sex: SexFemale, Height: 260, Weight: 40, Lifestyle: LifestyleOmnivore}
	assert.Equal(t, BaselineCalories(tiny)+200, MacroTargets(tiny)[0].Amount)
}
