package model

import "time"

type Expense struct {
	ID                int64     `json:"id"`
	RoomID            int64     `json:"room_id"`
	PayerMembershipID int64     `json:"payer_membership_id"`
	Description       string    `json:"description"`
	AmountCents       int64     `json:"amount_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

type ExpenseSplit struct {
	ID           int64 `json:"id"`
	ExpenseID    int64 `json:"expense_id"`
	MembershipID int64 `json:"membership_id"`
	AmountCents  int64 `json:"amount_cents"`
	IsSettled    bool  `json:"is_settled"`
}

// ExpenseWithSplits is the read shape for room expense listings.
type ExpenseWithSplits struct {
	Expense
	Splits []ExpenseSplit `json:"splits"`
}
