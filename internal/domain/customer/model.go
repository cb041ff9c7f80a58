package customer

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
	MaxGoalLength = 500
)

// Customer statuses
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusArchived = "archived"
)

// Statuses lists valid statuses in display order.
var Statuses = []string{StatusActive, StatusPaused, StatusArchived}

// Activity levels reported by the mobile app onboarding.
const (
	ActivitySedentary = "sedentary"
	ActivityLight     = "light"
	ActivityModerate  = "moderate"
	ActivityHigh      = "high"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("customer name cannot be empty")
	ErrInvalidEmail    = errors.New("customer email must be valid")
	ErrInvalidStatus   = errors.New("status must be one of: active, paused, archived")
	ErrAlreadyArchived = errors.New("customer is already archived")
	ErrAlreadyActive   = errors.New("customer is already active")
	ErrNegativeMetric  = errors.New("height and weight cannot be negative")
)

// Customer is a coaching client. Everything past Name and Email is optional
// because the mobile app collects it progressively; zero values mean unknown.
type Customer struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Gender            string    `json:"gender"`
	BirthDate         time.Time `json:"birthDate"`
	HeightCm          float64   `json:"heightCm"`
	WeightKg          float64   `json:"weightKg"`
	Goal              string    `json:"goal"`
	ActivityLevel     string    `json:"activityLevel"`
	Status            string    `json:"status"`
	AdvisorID         string    `json:"advisorId"`
	CurrentCheckpoint int       `json:"currentCheckpoint"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Validate checks if the Customer has valid data.
// PRE: Customer struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("customer name cannot exceed 100 characters")
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if c.Status != StatusActive && c.Status != StatusPaused && c.Status != StatusArchived {
		return ErrInvalidStatus
	}
	if c.HeightCm < 0 || c.WeightKg < 0 {
		return ErrNegativeMetric
	}
	if len(c.Goal) > MaxGoalLength {
		return errors.New("goal cannot exceed 500 characters")
	}
	return nil
}

// IsActive returns true if the customer is currently coached.
// INVARIANT: Status field is not mutated
func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

// Archive sets the customer status to archived.
// PRE: Customer is not already archived
// POST: Status is archived
func (c *Customer) Archive() error {
	if c.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	c.Status = StatusArchived
	return nil
}

// Reactivate returns a paused or archived customer to active.
// PRE: Customer is not active
// POST: Status is active
func (c *Customer) Reactivate() error {
	if c.Status == StatusActive {
		return ErrAlreadyActive
	}
	c.Status = StatusActive
	return nil
}

// AgeAt returns the customer's age in whole years at now, or 0 when the birth date is unknown.
func (c *Customer) AgeAt(now time.Time) int {
	if c.BirthDate.IsZero() || now.Before(c.BirthDate) {
		return 0
	}
	age := now.Year() - c.BirthDate.Year()
	if now.Month() < c.BirthDate.Month() || (now.Month() == c.BirthDate.Month() && now.Day() < c.BirthDate.Day()) {
		age--
	}
	return age
}
