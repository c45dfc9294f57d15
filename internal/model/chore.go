package model

import "time"

// Chore frequencies. Persisted as literal tokens; anything other than
// daily/weekly/monthly is treated as custom-scheduled and never computed
// as due by the evaluator.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyCustom  = "custom"
)

// Completion statuses.
const (
	CompletionPending  = "pending"
	CompletionApproved = "approved"
	CompletionRejected = "rejected"
)

// Verification outcomes.
const (
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

type Chore struct {
	ID               int64      `json:"id"`
	RoomID           int64      `json:"room_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Frequency        string     `json:"frequency"`
	FrequencyValue   *int       `json:"frequency_value"`
	DayOfWeek        *int       `json:"day_of_week"`
	Timing           string     `json:"timing"`
	StartDate        *time.Time `json:"start_date"`
	ApprovalRequired bool       `json:"approval_required"`
	PhotoRequired    bool       `json:"photo_required"`
	LastCompleted    *time.Time `json:"last_completed"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Assignment is an edge between a chore and a membership. At most one row
// exists per (chore, membership) pair; re-assignment flips is_active back on.
type Assignment struct {
	ID           int64     `json:"id"`
	ChoreID      int64     `json:"chore_id"`
	MembershipID int64     `json:"membership_id"`
	IsActive     bool      `json:"is_active"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// Assignee is an active assignment joined with the member's name for listings.
type Assignee struct {
	MembershipID int64     `json:"membership_id"`
	UserName     string    `json:"user_name"`
	AssignedAt   time.Time `json:"assigned_at"`
}

type Completion struct {
	ID           int64     `json:"id"`
	ChoreID      int64     `json:"chore_id"`
	MembershipID int64     `json:"membership_id"`
	CompletedAt  time.Time `json:"completed_at"`
	PhotoURL     *string   `json:"photo_url"`
	Status       string    `json:"status"`
	PointsEarned int       `json:"points_earned"`
}

type Verification struct {
	ID               int64     `json:"id"`
	CompletionID     int64     `json:"completion_id"`
	VerifiedBy       int64     `json:"verified_by"`
	VerificationType string    `json:"verification_type"`
	Comment          string    `json:"comment"`
	VerifiedAt       time.Time `json:"verified_at"`
}
