package model

import "time"

// Membership roles. Persisted as literal tokens.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership is a user's participation record within one room. Every other
// room-scoped entity references memberships, never users directly.
type Membership struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	RoomID         int64     `json:"room_id"`
	Role           string    `json:"role"`
	Points         int       `json:"points"`
	StreakCount    int       `json:"streak_count"`
	TotalCompleted int       `json:"total_completed"`
	TrustScore     int       `json:"trust_score"`
	IsActive       bool      `json:"is_active"`
	JoinedAt       time.Time `json:"joined_at"`
}

// MembershipWithUser joins the member's display name for room rosters.
type MembershipWithUser struct {
	Membership
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
