package model

import "time"

type Announcement struct {
	ID           int64     `json:"id"`
	RoomID       int64     `json:"room_id"`
	MembershipID int64     `json:"membership_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
