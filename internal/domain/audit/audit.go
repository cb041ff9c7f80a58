package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the entity they concern.
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryCustomer Category = "customer"
	CategoryPlan     Category = "plan"
	CategoryFeedback Category = "feedback"
	CategoryPolicy   Category = "policy"
	CategoryAdvisor  Category = "advisor"
	CategorySecurity Category = "security"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionReview  Action = "review"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actorId"`
	ActorEmail   string    `json:"actorEmail"`
	ActorRole    string    `json:"actorRole"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ipAddress"`
}

// NewEvent creates an info-level event stamped with now.
// PRE: actorID and action are non-empty
func NewEvent(actorID, actorEmail, actorRole string, category Category, action Action, now time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  now,
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		ActorRole:  actorRole,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets the resource the event concerns.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the human-readable description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithIP sets the client address.
func (e Event) WithIP(ip string) Event {
	e.IPAddress = ip
	return e
}
