package model

import "time"

type CleaningTask struct {
	ID         int64     `json:"id"`
	RoomID     int64     `json:"room_id"`
	Name       string    `json:"name"`
	Area       string    `json:"area"`
	IsDone     bool      `json:"is_done"`
	LastDoneBy *int64    `json:"last_done_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}
