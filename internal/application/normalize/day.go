package normalize

import (
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/workoutplan"
)

// MealDaySummary totals one day of a meal plan.
type MealDaySummary struct {
	Day      int             `json:"day"`
	Meals    int             `json:"meals"`
	Calories int             `json:"calories"`
	Macros   mealplan.Macros `json:"macros"`
	ByType   map[string]int  `json:"byType"`
}

// MealDay summarizes the entries of one day.
// PRE: entries share a day number (the first entry's day is reported)
func MealDay(entries []mealplan.Entry) MealDaySummary {
	s := MealDaySummary{ByType: map[string]int{}}
	for i, e := range entries {
		if i == 0 {
			s.Day = e.DayNumber
		}
		s.Meals++
		cal := e.Calories
		if cal == 0 {
			cal = e.FoodCalories()
		}
		s.Calories += cal
		s.Macros.Protein += e.Macros.Protein
		s.Macros.Carbs += e.Macros.Carbs
		s.Macros.Fat += e.Macros.Fat
		s.ByType[orDefault(e.MealType, "other")]++
	}
	return s
}

// WorkoutDaySummary totals one day of a workout plan.
type WorkoutDaySummary struct {
	Day        int            `json:"day"`
	Exercises  int            `json:"exercises"`
	TotalSets  int            `json:"totalSets"`
	Minutes    int            `json:"minutes"`
	ByCategory map[string]int `json:"byCategory"`
	RestDay    bool           `json:"restDay"`
}

// WorkoutDay summarizes the entries of one day. A day made only of recovery
// work counts as a rest day.
func WorkoutDay(entries []workoutplan.Entry) WorkoutDaySummary {
	s := WorkoutDaySummary{ByCategory: map[string]int{}}
	recovery := 0
	for i, e := range entries {
		if i == 0 {
			s.Day = e.DayNumber
		}
		s.Exercises++
		s.TotalSets += e.Sets
		s.Minutes += e.DurationMinutes
		s.ByCategory[orDefault(e.Category, "other")]++
		if e.Category == workoutplan.CategoryRecovery {
			recovery++
		}
	}
	s.RestDay = s.Exercises > 0 && recovery == s.Exercises
	return s
}
