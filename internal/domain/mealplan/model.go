package mealplan

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"coachdesk/internal/domain/fieldvalue"
)

// Meal types
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// MealTypes lists the valid meal types in display order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Max length constants for user-editable fields.
const (
	MaxFoodNameLength = 120
	MaxQuantityLength = 60
	MaxFoodsPerMeal   = 30
)

// Domain errors
var (
	ErrEmptyUserID      = errors.New("user ID is required")
	ErrInvalidDayNumber = errors.New("day number must be at least 1")
	ErrInvalidMealType  = errors.New("meal type must be one of: breakfast, lunch, dinner, snack")
	ErrNegativeValue    = errors.New("calories and macros cannot be negative")
	ErrEmptyFoodName    = errors.New("food name cannot be empty")
	ErrTooManyFoods     = errors.New("a meal cannot list more than 30 foods")
	ErrUnknownField     = errors.New("unknown meal field")
	ErrFoodOutOfRange   = errors.New("food index out of range")
)

// Macros is the macro breakdown of a meal in grams.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// Food is one line of a meal's food list.
type Food struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Calories int    `json:"calories"`
}

// Entry is one meal of a customer's plan, tagged with the day and checkpoint
// it belongs to. A day is made of several entries.
type Entry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	DayNumber        int       `json:"dayNumber"`
	CheckpointNumber int       `json:"checkpointNumber"`
	MealType         string    `json:"mealType"`
	Calories         int       `json:"calories"`
	Macros           Macros    `json:"macros"`
	Foods            []Food    `json:"foods"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.UserID == "" {
		return ErrEmptyUserID
	}
	if e.DayNumber < 1 {
		return ErrInvalidDayNumber
	}
	if !slices.Contains(MealTypes, e.MealType) {
		return ErrInvalidMealType
	}
	if e.Calories < 0 || e.Macros.Protein < 0 || e.Macros.Carbs < 0 || e.Macros.Fat < 0 {
		return ErrNegativeValue
	}
	if len(e.Foods) > MaxFoodsPerMeal {
		return ErrTooManyFoods
	}
	for _, f := range e.Foods {
		if strings.TrimSpace(f.Name) == "" {
			return ErrEmptyFoodName
		}
		if len(f.Name) > MaxFoodNameLength {
			return fmt.Errorf("food name cannot exceed %d characters", MaxFoodNameLength)
		}
		if len(f.Quantity) > MaxQuantityLength {
			return fmt.Errorf("food quantity cannot exceed %d characters", MaxQuantityLength)
		}
		if f.Calories < 0 {
			return ErrNegativeValue
		}
	}
	return nil
}

// Day returns the day number; used as the grouping key.
func Day(e Entry) int {
	return e.DayNumber
}

// Clone returns a deep copy of e. The food list is copied by value.
func Clone(e Entry) Entry {
	e.Foods = slices.Clone(e.Foods)
	return e
}

// FoodCalories sums the calories of the food list.
func (e Entry) FoodCalories() int {
	total := 0
	for _, f := range e.Foods {
		total += f.Calories
	}
	return total
}

// SetField returns a copy of e with one field replaced by the parsed raw value.
// Numeric fields fall back to 0 on unparsable input. Food fields use the path
// "foods.<index>.<name|quantity|calories>"; only the food list is copied when
// a food is touched, so other fields keep their identity.
// PRE: field names a known field
// POST: e is never modified
func SetField(e Entry, field, raw string) (Entry, error) {
	switch field {
	case "mealType":
		e.MealType = strings.ToLower(strings.TrimSpace(raw))
	case "calories":
		e.Calories = fieldvalue.Int(raw)
	case "macros.protein":
		e.Macros.Protein = fieldvalue.Float(raw)
	case "macros.carbs":
		e.Macros.Carbs = fieldvalue.Float(raw)
	case "macros.fat":
		e.Macros.Fat = fieldvalue.Float(raw)
	default:
		if strings.HasPrefix(field, "foods.") {
			return setFoodField(e, strings.TrimPrefix(field, "foods."), raw)
		}
		return e, ErrUnknownField
	}
	return e, nil
}

func setFoodField(e Entry, path, raw string) (Entry, error) {
	idxStr, name, ok := strings.Cut(path, ".")
	if !ok {
		return e, ErrUnknownField
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 || idx >= len(e.Foods) {
		return e, ErrFoodOutOfRange
	}
	f := e.Foods[idx]
	switch name {
	case "name":
		f.Name = raw
	case "quantity":
		f.Quantity = raw
	case "calories":
		f.Calories = fieldvalue.Int(raw)
	default:
		return e, ErrUnknownField
	}
	foods := slices.Clone(e.Foods)
	foods[idx] = f
	e.Foods = foods
	return e, nil
}

// AddFood returns a copy of e with an empty food row appended.
func AddFood(e Entry) Entry {
	foods := make([]Food, len(e.Foods), len(e.Foods)+1)
	copy(foods, e.Foods)
	e.Foods = append(foods, Food{})
	return e
}

// RemoveFood returns a copy of e without the food at idx.
func RemoveFood(e Entry, idx int) (Entry, error) {
	if idx < 0 || idx >= len(e.Foods) {
		return e, ErrFoodOutOfRange
	}
	foods := make([]Food, 0, len(e.Foods)-1)
	foods = append(foods, e.Foods[:idx]...)
	foods = append(foods, e.Foods[idx+1:]...)
	e.Foods = foods
	return e, nil
}

// NewEntry returns a blank meal for a day, used when an advisor adds a meal row.
func NewEntry(userID string, day, checkpoint int) Entry {
	return Entry{
		UserID:           userID,
		DayNumber:        day,
		CheckpointNumber: checkpoint,
		MealType:         MealSnack,
		Foods:            []Food{},
	}
}
