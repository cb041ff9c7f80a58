package policy

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength    = 200
	MaxBodyLength     = 20000
	MaxCategoryLength = 60
)

// Domain errors
var (
	ErrEmptyTitle = errors.New("policy title cannot be empty")
	ErrEmptyBody  = errors.New("policy body cannot be empty")
)

// Policy is a coaching guideline shown to advisors. Body is markdown.
type Policy struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks if the Policy has valid data.
// PRE: Policy struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Policy) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return errors.New("policy title cannot exceed 200 characters")
	}
	if strings.TrimSpace(p.Body) == "" {
		return ErrEmptyBody
	}
	if len(p.Body) > MaxBodyLength {
		return errors.New("policy body cannot exceed 20000 characters")
	}
	if len(p.Category) > MaxCategoryLength {
		return errors.New("policy category cannot exceed 60 characters")
	}
	return nil
}
