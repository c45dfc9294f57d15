package model

import "time"

// Swap request statuses. pending is the only non-terminal state.
const (
	SwapPending   = "pending"
	SwapAccepted  = "accepted"
	SwapDeclined  = "declined"
	SwapCancelled = "cancelled"
)

type SwapRequest struct {
	ID             int64      `json:"id"`
	ChoreID        int64      `json:"chore_id"`
	FromMembership int64      `json:"from_membership"`
	ToMembership   int64      `json:"to_membership"`
	Status         string     `json:"status"`
	Message        string     `json:"message"`
	RequestedAt    time.Time  `json:"requested_at"`
	RespondedAt    *time.Time `json:"responded_at"`
}

// SwapRequestWithDetails adds chore and member names for inbox listings.
type SwapRequestWithDetails struct {
	SwapRequest
	ChoreName    string `json:"chore_name"`
	FromUserName string `json:"from_user_name"`
	ToUserName   string `json:"to_user_name"`
}
