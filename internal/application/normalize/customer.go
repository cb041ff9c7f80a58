// Package normalize maps stored records onto the fixed view models used by
// screens and the JSON API. Every function is total: missing or malformed
// input produces a placeholder, never an error or a panic.
package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"coachdesk/internal/domain/customer"
)

// Placeholders rendered for missing values.
const (
	Dash   = "—"
	NotSet = "Not set"
)

// CustomerProfile is the display shape of a customer.
type CustomerProfile struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Initials      string  `json:"initials"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	AgeLabel      string  `json:"ageLabel"`
	Height        string  `json:"height"`
	Weight        string  `json:"weight"`
	BMI           float64 `json:"bmi"`
	BMILabel      string  `json:"bmiLabel"`
	Goal          string  `json:"goal"`
	ActivityLevel string  `json:"activityLevel"`
	Status        string  `json:"status"`
	Checkpoint    int     `json:"checkpoint"`
	MemberSince   string  `json:"memberSince"`
}

// Customer builds the profile view of c as of now.
func Customer(c customer.Customer, now time.Time) CustomerProfile {
	p := CustomerProfile{
		ID:            c.ID,
		Name:          orDefault(c.Name, "Unnamed customer"),
		Initials:      initials(c.Name),
		Email:         orDefault(c.Email, Dash),
		Phone:         orDefault(c.Phone, Dash),
		Gender:        orDefault(titleCase(c.Gender), NotSet),
		Height:        Dash,
		Weight:        Dash,
		BMILabel:      Dash,
		AgeLabel:      Dash,
		Goal:          orDefault(c.Goal, NotSet),
		ActivityLevel: orDefault(titleCase(c.ActivityLevel), NotSet),
		Status:        orDefault(c.Status, customer.StatusActive),
		Checkpoint:    c.CurrentCheckpoint,
		MemberSince:   Dash,
	}
	if age := c.AgeAt(now); age > 0 {
		p.Age = age
		p.AgeLabel = fmt.Sprintf("%d", age)
	}
	if c.HeightCm > 0 {
		p.Height = fmt.Sprintf("%.0f cm", c.HeightCm)
	}
	if c.WeightKg > 0 {
		p.Weight = fmt.Sprintf("%.1f kg", c.WeightKg)
	}
	if bmi := BMI(c.HeightCm, c.WeightKg); bmi > 0 {
		p.BMI = bmi
		p.BMILabel = fmt.Sprintf("%.1f", bmi)
	}
	if !c.CreatedAt.IsZero() {
		p.MemberSince = c.CreatedAt.Format("2 Jan 2006")
	}
	return p
}

// BMI returns weight/height² rounded to one decimal, or 0 when either is unknown.
func BMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 || weightKg <= 0 || math.IsNaN(heightCm) || math.IsNaN(weightKg) {
		return 0
	}
	m := heightCm / 100
	bmi := weightKg / (m * m)
	if math.IsInf(bmi, 0) {
		return 0
	}
	return math.Round(bmi*10) / 10
}

func initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	out := []rune{}
	for _, f := range fields {
		r := []rune(f)
		out = append(out, r[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "_", " "))
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
