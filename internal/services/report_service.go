package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"greenia/internal/models"
	"greenia/internal/repository"
	"greenia/internal/validation"
)

const (
	BottleGoal      = 1000
	CO2GoalKg       = 500.0
	RecentLimit     = 5
	dashboardMonths = 6
	dateLayout      = "2006-01-02"
)

// User levels by recycled bottles.
const (
	LevelBeginner     = "Principiante"
	LevelIntermediate = "Intermedio"
	LevelExpert       = "Experto"
)

// ReportService aggregates recognitions for administrators and users.
type ReportService struct {
	recognitions repository.RecognitionRepository
	users        repository.UserRepository
	now          func() time.Time
}

func NewReportService(recognitions repository.RecognitionRepository, users repository.UserRepository) *ReportService {
	return &ReportService{
		recognitions: recognitions,
		users:        users,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ParseDateRange turns inclusive YYYY-MM-DD bounds into a half-open range.
// Empty strings leave the bound open.
func ParseDateRange(from, to string) (models.DateRange, error) {
	var rng models.DateRange
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return rng, validation.Field("from", "must be a date in YYYY-MM-DD format")
		}
		rng.From = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return rng, validation.Field("to", "must be a date in YYYY-MM-DD format")
		}
		rng.To = t.AddDate(0, 0, 1)
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && !rng.From.Before(rng.To) {
		return rng, validation.Field("to", "must not be before from")
	}
	return rng, nil
}

func (s *ReportService) Activity(ctx context.Context, adminID string, rng models.DateRange) ([]models.UserActivity, error) {
	return s.recognitions.ActivityByUser(ctx, adminID, rng)
}

func (s *ReportService) Impact(ctx context.Context, adminID string, rng models.DateRange) ([]models.PlasticImpact, error) {
	return s.recognitions.ImpactByType(ctx, adminID, rng)
}

func (s *ReportService) Summary(ctx context.Context, adminID string, rng models.DateRange) (*models.SummaryReport, error) {
	totals, err := s.recognitions.Totals(ctx, adminID, rng)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	trend, err := s.recognitions.Trend(ctx, adminID, repository.TrendDaily, rng)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	return &models.SummaryReport{Range: rng, Totals: *totals, DailyTrend: trend}, nil
}

// Dashboard reports all-time totals against the fixed goals plus the monthly
// trend of the last six months.
func (s *ReportService) Dashboard(ctx context.Context, adminID string) (*models.Dashboard, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	trendRange := models.DateRange{From: monthStart.AddDate(0, -(dashboardMonths - 1), 0)}

	totals, err := s.recognitions.Totals(ctx, adminID, models.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	trend, err := s.recognitions.Trend(ctx, adminID, repository.TrendMonthly, trendRange)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}

	return &models.Dashboard{
		Totals:            *totals,
		BottleGoal:        BottleGoal,
		CO2GoalKg:         CO2GoalKg,
		BottleProgressPct: progress(float64(totals.Bottles), BottleGoal),
		CO2ProgressPct:    progress(totals.CO2SavedKg, CO2GoalKg),
		MonthlyTrend:      trend,
	}, nil
}

// UserHome gathers the profile, lifetime stats and latest recognitions of a user.
func (s *ReportService) UserHome(ctx context.Context, userID string) (*models.UserHome, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.recognitions.UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	stats.Level = Level(stats.Bottles)
	recent, err := s.recognitions.ListByUser(ctx, userID, RecentLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("recent recognitions: %w", err)
	}
	return &models.UserHome{User: *user, Stats: *stats, Recent: recent}, nil
}

func (s *ReportService) UserRecognitions(ctx context.Context, userID string, limit, offset int) ([]models.Recognition, int, error) {
	items, err := s.recognitions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recognitions.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func Level(bottles int) string {
	switch {
	case bottles >= 100:
		return LevelExpert
	case bottles >= 50:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

func progress(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	pct := value / goal * 100
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*10) / 10
}
