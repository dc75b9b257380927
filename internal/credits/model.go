package credits

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActionType names a metered action. Every action costs CostPerAction.
type ActionType string

const (
	ActionCourseCreation ActionType = "course_creation"
	ActionPDFProcessing  ActionType = "pdf_processing"
	ActionWebScraping    ActionType = "web_scraping"
)

const CostPerAction = 1

type PlanType string

const (
	PlanFree       PlanType = "free"
	PlanStandard   PlanType = "standard"
	PlanPro        PlanType = "pro"
	PlanBusiness   PlanType = "business"
	PlanEnterprise PlanType = "enterprise"
)

// MonthlyAllowance returns the default monthly credits for a plan. Enterprise
// allowances are negotiated and stored on the account, so it reports 0.
func (p PlanType) MonthlyAllowance() int {
	switch p {
	case PlanFree:
		return 50
	case PlanStandard:
		return 500
	case PlanPro:
		return 1500
	case PlanBusiness:
		return 4000
	default:
		return 0
	}
}

// Account matches the user_credits table schema.
type Account struct {
	UserID               uuid.UUID `json:"user_id"`
	PlanType             PlanType  `json:"plan_type"`
	MonthlyCredits       int       `json:"monthly_credits"`
	AdditionalCredits    int       `json:"additional_credits"`
	CreditsUsedThisMonth int       `json:"credits_used_this_month"`
	ResetDate            time.Time `json:"reset_date"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (a *Account) Total() int {
	return a.MonthlyCredits + a.AdditionalCredits
}

// Available never goes below zero.
func (a *Account) Available() int {
	return max(0, a.Total()-a.CreditsUsedThisMonth)
}

// UsageEvent matches the credit_usage_events table schema. Rows are append-only.
type UsageEvent struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ActionType  ActionType      `json:"action_type"`
	CreditsUsed int             `json:"credits_used"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Summary is the API view of an account.
type Summary struct {
	AvailableCredits     int       `json:"available_credits"`
	TotalCredits         int       `json:"total_credits"`
	CreditsUsedThisMonth int       `json:"credits_used_this_month"`
	PlanType             PlanType  `json:"plan_type"`
	ResetDate            time.Time `json:"reset_date"`
}

func summarize(a *Account) *Summary {
	return &Summary{
		AvailableCredits:     a.Available(),
		TotalCredits:         a.Total(),
		CreditsUsedThisMonth: a.CreditsUsedThisMonth,
		PlanType:             a.PlanType,
		ResetDate:            a.ResetDate,
	}
}

// ConsumeRequest carries everything written by one successful action.
type ConsumeRequest struct {
	UserID      uuid.UUID
	Action      ActionType
	Cost        int
	Description string
	Metadata    map[string]any
}
