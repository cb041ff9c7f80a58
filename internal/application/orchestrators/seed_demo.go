package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	customerStore "coachdesk/internal/adapters/storage/customer"
	"coachdesk/internal/domain/customer"
	"coachdesk/internal/domain/feedback"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/plan"
	"coachdesk/internal/domain/policy"
	"coachdesk/internal/domain/workoutplan"
)

// DemoSeedDeps holds the stores filled by the demo seeder.
type DemoSeedDeps struct {
	CustomerStore demoCustomerStore
	MealStore     MealDayStore
	WorkoutStore  WorkoutDayStore
	PlanStore     demoPlanStore
	FeedbackStore demoFeedbackStore
	PolicyStore   demoPolicyStore
	GenerateID    func() string
	Now           func() time.Time
}

type demoCustomerStore interface {
	Save(ctx context.Context, c customer.Customer) error
	Count(ctx context.Context, filter customerStore.ListFilter) (int, error)
}
type demoPlanStore interface {
	Save(ctx context.Context, p plan.Plan) error
}
type demoFeedbackStore interface {
	Save(ctx context.Context, s feedback.Submission) error
}
type demoPolicyStore interface {
	Save(ctx context.Context, p policy.Policy) error
}

type demoCustomer struct {
	name, email, gender, goal, activity, status string
	birth                                       time.Time
	height, weight                              float64
}

func demoCustomers() []demoCustomer {
	return []demoCustomer{
		{"Ana Ribeiro", "ana.ribeiro@example.com", "female", "fat loss", "moderate", customer.StatusActive, time.Date(1991, 4, 12, 0, 0, 0, 0, time.UTC), 165, 68},
		{"Tomás Costa", "tomas.costa@example.com", "male", "muscle gain", "high", customer.StatusActive, time.Date(1996, 11, 3, 0, 0, 0, 0, time.UTC), 181, 74.5},
		{"Mei Lin", "mei.lin@example.com", "female", "endurance", "high", customer.StatusActive, time.Date(1988, 2, 29, 0, 0, 0, 0, time.UTC), 158, 52},
		{"Joe Park", "joe.park@example.com", "", "", "", customer.StatusPaused, time.Time{}, 0, 0},
		{"Rita Gomes", "rita.gomes@example.com", "female", "maintenance", "low", customer.StatusArchived, time.Date(1979, 7, 21, 0, 0, 0, 0, time.UTC), 170, 71},
	}
}

// ExecuteSeedDemo fills an empty database with customers, three days of
// meals and workouts each, pending plans, feedback and policies.
// PRE: Database is migrated
// POST: No-op when any customer exists
func ExecuteSeedDemo(ctx context.Context, deps DemoSeedDeps) error {
	n, err := deps.CustomerStore.Count(ctx, customerStore.ListFilter{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := deps.Now()
	var seeded []customer.Customer
	for i, d := range demoCustomers() {
		c := customer.Customer{
			ID:                deps.GenerateID(),
			Name:              d.name,
			Email:             d.email,
			Gender:            d.gender,
			BirthDate:         d.birth,
			HeightCm:          d.height,
			WeightKg:          d.weight,
			Goal:              d.goal,
			ActivityLevel:     d.activity,
			Status:            d.status,
			CurrentCheckpoint: 1 + i%2,
			CreatedAt:         now.AddDate(0, -(i + 1), 0),
		}
		if err := deps.CustomerStore.Save(ctx, c); err != nil {
			return fmt.Errorf("seed customer %s: %w", d.name, err)
		}
		seeded = append(seeded, c)
	}

	for _, c := range seeded[:3] {
		for day := 1; day <= 3; day++ {
			if err := deps.MealStore.ReplaceDay(ctx, c.ID, c.CurrentCheckpoint, day, demoMeals(day)); err != nil {
				return fmt.Errorf("seed meals: %w", err)
			}
			if err := deps.WorkoutStore.ReplaceDay(ctx, c.ID, c.CurrentCheckpoint, day, demoWorkouts(day)); err != nil {
				return fmt.Errorf("seed workouts: %w", err)
			}
		}
		for _, kind := range []string{plan.KindMeal, plan.KindWorkout} {
			p := plan.Plan{
				ID:               deps.GenerateID(),
				CustomerID:       c.ID,
				Kind:             kind,
				CheckpointNumber: c.CurrentCheckpoint,
				Status:           plan.StatusPending,
				GeneratedAt:      now.Add(-6 * time.Hour),
			}
			if err := deps.PlanStore.Save(ctx, p); err != nil {
				return fmt.Errorf("seed plan: %w", err)
			}
		}
	}

	payloads := []map[string]any{
		{"workoutLogId": "wl-101", "exerciseName": "Back squat", "rating": 4, "comment": "Felt strong, knees fine", "completed": true, "durationMinutes": 55},
		{"meal_log_id": "ml-202", "meal_type": "lunch", "rating": "3", "comment": "Portion too big", "calories": 820},
		{"mealLogId": "ml-203", "mealType": "breakfast", "rating": 5, "photoUrl": "https://example.com/p/203.jpg"},
		{"note": "app crashed when logging"},
	}
	for i, p := range payloads {
		raw, _ := json.Marshal(p)
		sub := feedback.Submission{
			ID:         deps.GenerateID(),
			CustomerID: seeded[i%3].ID,
			Payload:    raw,
			ReceivedAt: now.Add(-time.Duration(i+1) * time.Hour),
			Status:     feedback.StatusNew,
		}
		if err := deps.FeedbackStore.Save(ctx, sub); err != nil {
			return fmt.Errorf("seed feedback: %w", err)
		}
	}

	for _, p := range []policy.Policy{
		{Title: "Protein targets", Category: "nutrition", Active: true,
			Body: "Aim for **1.6–2.2 g/kg** body weight.\n\n- Spread across 3–5 meals\n- Prefer whole foods"},
		{Title: "Deload weeks", Category: "training", Active: true,
			Body: "Every fourth week drop volume by roughly 40%."},
		{Title: "Medical referrals", Category: "safety", Active: false,
			Body: "Refer any chest pain or fainting report to a physician before the next session."},
	} {
		p.ID = deps.GenerateID()
		p.CreatedAt, p.UpdatedAt = now, now
		if err := deps.PolicyStore.Save(ctx, p); err != nil {
			return fmt.Errorf("seed policy: %w", err)
		}
	}

	slog.Info("seed_event", "event", "demo_seeded", "customers", len(seeded))
	return nil
}

func demoMeals(day int) []mealplan.Entry {
	return []mealplan.Entry{
		{MealType: mealplan.MealBreakfast, Calories: 450 + day*10, Macros: mealplan.Macros{Protein: 25, Carbs: 55, Fat: 12},
			Foods: []mealplan.Food{{Name: "Oats", Quantity: "60 g", Calories: 230}, {Name: "Greek yoghurt", Quantity: "150 g", Calories: 140}}},
		{MealType: mealplan.MealLunch, Calories: 650, Macros: mealplan.Macros{Protein: 40, Carbs: 70, Fat: 18},
			Foods: []mealplan.Food{{Name: "Chicken breast", Quantity: "150 g", Calories: 250}, {Name: "Rice", Quantity: "180 g", Calories: 230}}},
		{MealType: mealplan.MealDinner, Calories: 600, Macros: mealplan.Macros{Protein: 35, Carbs: 50, Fat: 22},
			Foods: []mealplan.Food{{Name: "Salmon", Quantity: "140 g", Calories: 290}}},
	}
}

func demoWorkouts(day int) []workoutplan.Entry {
	if day == 3 {
		return []workoutplan.Entry{
			{ExerciseName: "Walk", DurationMinutes: 30, Category: workoutplan.CategoryRecovery},
			{ExerciseName: "Stretching", DurationMinutes: 15, Category: workoutplan.CategoryRecovery},
		}
	}
	return []workoutplan.Entry{
		{ExerciseName: "Back squat", Sets: 4, Reps: 6 + day, Category: workoutplan.CategoryStrength},
		{ExerciseName: "Romanian deadlift", Sets: 3, Reps: 10, Category: workoutplan.CategoryStrength},
		{ExerciseName: "Bike intervals", DurationMinutes: 20, Category: workoutplan.CategoryCardio, Note: "30s on / 90s off"},
	}
}
