package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nutribalance/models"
	"nutribalance/nutrition"
	"nutribalance/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func balanceRows(t *testing.T, db *gorm.DB, userID string) []models.MolecularBalance {
	t.Helper()
	var rows []models.MolecularBalance
	require.NoError(t, db.Where("user_id = ?", userID).Order("date ASC").Find(&rows).Error)
	return rows
}

func TestDailySummaryWithoutProfile(t *testing.T) {
	db := testutil.NewDB(t)
	meals := NewMealService(db, nil, nil)
	_, err := meals.Create(context.Background(), testUser, MealInput{MealTime: day.Add(8 * time.Hour), Foods: []nutrition.FoodItem{proteinFood(20)}})
	require.NoError(t, err)

	summary, err := NewBalanceService(db, nil).DailySummary(context.Background(), testUser, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", summary.Date)
	assert.Len(t, summary.Meals, 1)
	protein, _ := amountOf(summary.TotalNutrition.Macronutrients, nutrition.NameProtein)
	assert.Equal(t, 20.0, protein)
	assert.Nil(t, summary.Targets)
	assert.Nil(t, summary.Balance)
	assert.Empty(t, balanceRows(t, db, testUser))
}

func TestDailySummaryScoresAndPersists(t *testing.T) {
	db := testutil.NewDB(t)
	seedProfile(t, db, testUser)
	meals := NewMealService(db, nil, nil)
	balances := NewBalanceService(db, nil)
	ctx := context.Background()

	_, err := meals.Create(ctx, testUser, MealInput{MealTime: day.Add(8 * time.Hour), Foods: []nutrition.FoodItem{proteinFood(96)}})
	require.NoError(t, err)
	// Next day, must not leak into the summary.
	_, err = meals.Create(ctx, testUser, MealInput{MealTime: day.AddDate(0, 0, 1), Foods: []nutrition.FoodItem{proteinFood(10)}})
	require.NoError(t, err)

	summary, err := balances.DailySummary(ctx, testUser, day)
	require.NoError(t, err)
	require.NotNil(t, summary.Balance)
	require.NotNil(t, summary.Targets)
	assert.Len(t, summary.Meals, 1)
	assert.Equal(t, 100, summary.Balance.Score)
	assert.Len(t, summary.Balance.Nutrients, 15)
	assert.Contains(t, summary.Balance.Deficiencies, "Iron")

	_, err = balances.DailySummary(ctx, testUser, day.Add(23*time.Hour))
	require.NoError(t, err)

	rows := balanceRows(t, db, testUser)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-03-10", rows[0].Date)
	assert.Equal(t, 100, rows[0].Score)
	assert.Len(t, rows[0].Deficiencies, 10)
}

func TestRefreshFollowsMealWrites(t *testing.T) {
	db := testutil.NewDB(t)
	seedProfile(t, db, testUser)
	balances := NewBalanceService(db, nil)
	meals := NewMealService(db, nil, balances)
	ctx := context.Background()

	meal, err := meals.Create(ctx, testUser, MealInput{MealTime: day.Add(8 * time.Hour), Foods: []nutrition.FoodItem{proteinFood(48)}})
	require.NoError(t, err)
	rows := balanceRows(t, db, testUser)
	require.Len(t, rows, 1)
	assert.Equal(t, 50, rows[0].Score)

	_, err = meals.Update(ctx, testUser, meal.ID, MealUpdate{Foods: []nutrition.FoodItem{proteinFood(96)}})
	require.NoError(t, err)
	rows = balanceRows(t, db, testUser)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].Score)

	require.NoError(t, meals.Delete(ctx, testUser, meal.ID))
	assert.Empty(t, balanceRows(t, db, testUser))
}

func TestLowScoreAlertFiresOnCrossing(t *testing.T) {
	db := testutil.NewDB(t)
	seedProfile(t, db, testUser)
	alerts := &fakeEmitter{}
	balances := NewBalanceService(db, alerts)
	meals := NewMealService(db, nil, balances)
	ctx := context.Background()

	meal, err := meals.Create(ctx, testUser, MealInput{MealTime: day.Add(8 * time.Hour), Foods: []nutrition.FoodItem{proteinFood(9.6)}})
	require.NoError(t, err)
	require.Equal(t, 1, alerts.count())
	assert.Equal(t, models.AlertWarning, alerts.calls[0].typ)
	assert.Contains(t, alerts.calls[0].message, "2026-03-10")
	assert.Contains(t, alerts.calls[0].message, "Low on: Iron, Calcium, Vitamin C and 7 more.")

	// Still low: no repeat.
	require.NoError(t, balances.Refresh(ctx, testUser, day))
	assert.Equal(t, 1, alerts.count())

	_, err = meals.Update(ctx, testUser, meal.ID, MealUpdate{Foods: []nutrition.FoodItem{proteinFood(96)}})
	require.NoError(t, err)
	assert.Equal(t, 1, alerts.count())

	_, err = meals.Update(ctx, testUser, meal.ID, MealUpdate{Foods: []nutrition.FoodItem{proteinFood(5)}})
	require.NoError(t, err)
	assert.Equal(t, 2, alerts.count())
}

func TestProgressSeriesAndTrend(t *testing.T) {
	db := testutil.NewDB(t)
	ref := time.Date(2026, 3, 28, 15, 0, 0, 0, time.UTC)

	// 14 consecutive days ending at ref: 50 for the older week, 70 for the recent one.
	for i := 0; i < 14; i++ {
		score := 50
		if i >= 7 {
			score = 70
		}
		d := ref.AddDate(0, 0, i-13)
		require.NoError(t, db.Create(&models.MolecularBalance{UserID: testUser, Date: nutrition.DayKey(d), Score: score}).Error)
	}
	// Outside a 14-day window and belonging to someone else.
	require.NoError(t, db.Create(&models.MolecularBalance{UserID: testUser, Date: "2026-01-01", Score: 5}).Error)
	require.NoError(t, db.Create(&models.MolecularBalance{UserID: "user-2", Date: "2026-03-27", Score: 5}).Error)

	svc := NewBalanceService(db, nil)

	p, err := svc.Progress(context.Background(), testUser, ref, 14)
	require.NoError(t, err)
	assert.Equal(t, 14, p.Days)
	require.Len(t, p.Series, 14)
	assert.Equal(t, "2026-03-15", nutrition.DayKey(p.Series[0].Date))
	assert.Equal(t, "2026-03-28", nutrition.DayKey(p.Series[13].Date))
	assert.Equal(t, nutrition.TrendImproving, p.Analysis.Trend)
	assert.Equal(t, 70.0, p.Analysis.RecentAverage)
	assert.Equal(t, 50.0, p.Analysis.OlderAverage)

	p, err = svc.Progress(context.Background(), testUser, ref, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultProgressDays, p.Days)
	assert.Len(t, p.Series, 14)

	p, err = svc.Progress(context.Background(), "nobody", ref, 7)
	require.NoError(t, err)
	assert.Empty(t, p.Series)
	assert.Equal(t, nutrition.TrendStable, p.Analysis.Trend)
}

func TestConcurrentDailySummaryKeepsOneRow(t *testing.T) {
	db := testutil.NewDB(t)
	seedProfile(t, db, testUser)
	ctx := context.Background()

	_, err := NewMealService(db, nil, nil).Create(ctx, testUser, MealInput{MealTime: day.Add(8 * time.Hour), Foods: []nutrition.FoodItem{proteinFood(9.6)}})
	require.NoError(t, err)

	alerts := &fakeEmitter{}
	balances := NewBalanceService(db, alerts)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = balances.DailySummary(ctx, testUser, day)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, balanceRows(t, db, testUser), 1)
	assert.Equal(t, 1, alerts.count())
}
