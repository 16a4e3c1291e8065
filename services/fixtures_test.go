package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nutribalance/models"
	"nutribalance/nutrition"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUser = "user-1"

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func seedProfile(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()
	p, err := NewProfileService(db).Upsert(context.Background(), userID, userID+"@example.com", ProfileInput{
		Name:      "Test",
		Age:       28,
		Sex:       nutrition.SexFemale,
		Height:    165,
		Weight:    60,
		Lifestyle: nutrition.LifestyleOmnivore,
	})
	require.NoError(t, err)
	return p
}

func proteinFood(grams float64) nutrition.FoodItem {
	return nutrition.FoodItem{
		Name:           "Chicken",
		Quantity:       1,
		Unit:           "serving",
		Macronutrients: map[string]float64{"protein": grams},
	}
}

func amountOf(list []nutrition.NutrientAmount, name string) (float64, bool) {
	for _, n := range list {
		if n.Name == name {
			return n.Amount, true
		}
	}
	return 0, false
}

type emitted struct {
	userID, typ, message string
}

type fakeEmitter struct {
	mu    sync.Mutex
	calls []emitted
}

func (f *fakeEmitter) Emit(_ context.Context, userID, typ, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emitted{userID, typ, message})
	return nil
}

func (f *fakeEmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
