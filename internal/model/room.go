package model

import "time"

type Room struct {
	ID        int64     `json:"id"`
	RoomCode  string    `json:"room_code"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invitation statuses.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

type Invitation struct {
	ID           int64     `json:"id"`
	RoomID       int64     `json:"room_id"`
	InvitedEmail string    `json:"invited_email"`
	InvitedBy    int64     `json:"invited_by"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
