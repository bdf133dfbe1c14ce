package models

import "time"

// DateRange is a half-open interval [From, To). Zero bounds are open.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type UserActivity struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Recognitions int     `json:"recognitions"`
	Bottles      int     `json:"bottles"`
	CO2SavedKg   float64 `json:"co2_saved_kg"`
}

type PlasticImpact struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Recognitions int     `json:"recognitions"`
	Bottles      int     `json:"bottles"`
	WeightKg     float64 `json:"weight_kg"`
	CO2SavedKg   float64 `json:"co2_saved_kg"`
}

type Totals struct {
	ActiveUsers  int     `json:"active_users"`
	Recognitions int     `json:"recognitions"`
	Bottles      int     `json:"bottles"`
	WeightKg     float64 `json:"weight_kg"`
	CO2SavedKg   float64 `json:"co2_saved_kg"`
}

type TrendPoint struct {
	Period     time.Time `json:"period"`
	Bottles    int       `json:"bottles"`
	CO2SavedKg float64   `json:"co2_saved_kg"`
}

type SummaryReport struct {
	Range      DateRange    `json:"range"`
	Totals     Totals       `json:"totals"`
	DailyTrend []TrendPoint `json:"daily_trend"`
}

type Dashboard struct {
	Totals            Totals       `json:"totals"`
	BottleGoal        int          `json:"bottle_goal"`
	CO2GoalKg         float64      `json:"co2_goal_kg"`
	BottleProgressPct float64      `json:"bottle_progress_pct"`
	CO2ProgressPct    float64      `json:"co2_progress_pct"`
	MonthlyTrend      []TrendPoint `json:"monthly_trend"`
}

type UserStats struct {
	Recognitions int     `json:"recognitions"`
	Bottles      int     `json:"bottles"`
	CO2SavedKg   float64 `json:"co2_saved_kg"`
	Level        string  `json:"level"`
}

type UserHome struct {
	User   User          `json:"user"`
	Stats  UserStats     `json:"stats"`
	Recent []Recognition `json:"recent"`
}

type PaginatedResponse struct {
	Data       any `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
