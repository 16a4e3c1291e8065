package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutribalance/metrics"
	"nutribalance/models"
	"nutribalance/nutrition"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultProgressDays = 30
	MaxProgressDays     = 365

	// lowScoreThreshold is the score below which a warning alert fires.
	lowScoreThreshold = 50
)

// AlertEmitter publishes a user alert.
type AlertEmitter interface {
	Emit(ctx context.Context, userID, typ, message string) error
}

// BalanceService builds daily nutrition summaries and keeps the per-day
// balance score history the trend analysis reads.
type BalanceService struct {
	db     *gorm.DB
	alerts AlertEmitter
	now    func() time.Time
}

func NewBalanceService(db *gorm.DB, alerts AlertEmitter) *BalanceService {
	return &BalanceService{db: db, alerts: alerts, now: time.Now}
}

type DailySummary struct {
	Date           string                `json:"date"`
	Meals          []models.Meal         `json:"meals"`
	TotalNutrition nutrition.DailyTotals `json:"totalNutrition"`
	Targets        *Targets              `json:"targets,omitempty"`
	Balance        *nutrition.Balance    `json:"balance,omitempty"`
}

type Progress struct {
	Days     int                       `json:"days"`
	Series   []nutrition.ProgressPoint `json:"series"`
	Analysis nutrition.TrendAnalysis   `json:"analysis"`
}

// DailySummary aggregates the user's meals on the UTC day containing day
// and scores them against the profile targets. Without a profile the
// summary carries totals only. With a profile it also stores the day's
// score and may raise a low-score alert, so reads have write side effects.
func (s *BalanceService) DailySummary(ctx context.Context, userID string, day time.Time) (*DailySummary, error) {
	start := nutrition.DayStart(day.UTC())
	end := start.AddDate(0, 0, 1)

	meals := []models.Meal{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND meal_time >= ? AND meal_time < ?", userID, start, end).
		Order("meal_time ASC").
		Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch meals: %w", err)
	}

	nm := make([]nutrition.Meal, 0, len(meals))
	for i := range meals {
		nm = append(nm, meals[i].Nutrition())
	}

	summary := &DailySummary{
		Date:           nutrition.DayKey(start),
		Meals:          meals,
		TotalNutrition: nutrition.AggregateDaily(nm),
	}

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return summary, nil
	}

	summary.Targets = targetsFor(profile)
	b := nutrition.Evaluate(summary.TotalNutrition, summary.Targets.Macronutrients, summary.Targets.Micronutrients)
	summary.Balance = &b

	if err := s.record(ctx, userID, summary.Date, len(meals) > 0, b); err != nil {
		return nil, err
	}
	return summary, nil
}

// Refresh recomputes and stores the balance for one day after its meals
// changed.
func (s *BalanceService) Refresh(ctx context.Context, userID string, day time.Time) error {
	_, err := s.DailySummary(ctx, userID, day)
	return err
}

// Progress returns the stored scores for the `days` days ending at ref and
// their trend. days outside 1..MaxProgressDays falls back to the default.
func (s *BalanceService) Progress(ctx context.Context, userID string, ref time.Time, days int) (*Progress, error) {
	if days <= 0 || days > MaxProgressDays {
		days = DefaultProgressDays
	}
	end := nutrition.DayStart(ref.UTC())
	start := end.AddDate(0, 0, -(days - 1))

	var rows []models.MolecularBalance
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, nutrition.DayKey(start), nutrition.DayKey(end)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch balance history: %w", err)
	}

	points := make([]nutrition.ProgressPoint, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("date", r.Date).Msg("skipping malformed balance row")
			continue
		}
		points = append(points, nutrition.ProgressPoint{Date: d, BalanceScore: r.Score})
	}

	series := nutrition.ProgressSeries(points, end, days)
	return &Progress{
		Days:     days,
		Series:   series,
		Analysis: nutrition.AnalyzeTrend(series),
	}, nil
}

func (s *BalanceService) profile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

// record upserts the day's score. A day with no meals left has no score.
// Concurrent writers for the same day never fail on the unique index, and
// only the writer that observed the crossing raises the low-score alert.
func (s *BalanceService) record(ctx context.Context, userID, date string, hasMeals bool, b nutrition.Balance) error {
	db := s.db.WithContext(ctx)

	var row models.MolecularBalance
	err := db.Where("user_id = ? AND date = ?", userID, date).First(&row).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to fetch balance: %w", err)
	}

	if !hasMeals {
		if exists {
			if err := db.Delete(&row).Error; err != nil {
				return fmt.Errorf("failed to clear balance: %w", err)
			}
		}
		return nil
	}

	deficiencies := b.Deficiencies
	if deficiencies == nil {
		deficiencies = []string{}
	}

	crossed := false
	if !exists {
		row = models.MolecularBalance{UserID: userID, Date: date, Score: b.Score, Deficiencies: deficiencies}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return fmt.Errorf("failed to save balance: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			crossed = b.Score < lowScoreThreshold
		} else {
			// another writer inserted the day first
			row = models.MolecularBalance{}
			if err := db.Where("user_id = ? AND date = ?", userID, date).First(&row).Error; err != nil {
				return fmt.Errorf("failed to fetch balance: %w", err)
			}
			exists = true
		}
	}

	if exists {
		previous := row.Score
		res := s.updateScore(db.Where("id = ? AND score = ?", row.ID, previous), b.Score, deficiencies)
		if res.Error != nil {
			return fmt.Errorf("failed to save balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// lost a race with another update; the score it wrote was
			// computed from the same meals
			if err := s.updateScore(db.Where("id = ?", row.ID), b.Score, deficiencies).Error; err != nil {
				return fmt.Errorf("failed to save balance: %w", err)
			}
			return nil
		}
		crossed = b.Score < lowScoreThreshold && previous >= lowScoreThreshold
	}

	metrics.Observe(metrics.BalanceScore, prometheus.Labels{}, float64(b.Score))

	if crossed {
		s.alertLowScore(ctx, userID, date, b)
	}
	return nil
}

func (s *BalanceService) updateScore(scope *gorm.DB, score int, deficiencies []string) *gorm.DB {
	return scope.Model(&models.MolecularBalance{}).
		Select("score", "deficiencies", "updated_at").
		Updates(models.MolecularBalance{Score: score, Deficiencies: deficiencies, UpdatedAt: s.now().UTC()})
}

func (s *BalanceService) alertLowScore(ctx context.Context, userID, date string, b nutrition.Balance) {
	if s.alerts == nil {
		return
	}
	msg := fmt.Sprintf("Your molecular balance score for %s is %d.", date, b.Score)
	if len(b.Deficiencies) > 0 {
		msg += fmt.Sprintf(" Low on: %s.", joinNames(b.Deficiencies, 3))
	}
	if err := s.alerts.Emit(ctx, userID, models.AlertWarning, msg); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("low score alert failed")
	}
}

// joinNames lists up to limit names, then a count of the rest.
func joinNames(names []string, limit int) string {
	out := ""
	for i, n := range names {
		if i == limit {
			return fmt.Sprintf("%s and %d more", out, len(names)-limit)
		}
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
