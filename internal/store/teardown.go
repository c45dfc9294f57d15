package store

import (
	"database/sql"
	"fmt"
	"strings"

	"roomsync/internal/apperr"
)

// TeardownStore unwinds memberships and rooms. The dependency order is a
// declared list of steps rather than inline statement sequencing, so tests
// can assert the order and every invocation runs leaves-first inside one
// transaction. A failure at any step rolls back the whole cascade.
type TeardownStore struct {
	db *sql.DB
}

func NewTeardownStore(db *sql.DB) *TeardownStore {
	return &TeardownStore{db: db}
}

// TeardownStep is one delete (or neutralize) against a single table. Every
// placeholder in Query binds the same id: the membership id for member
// steps, the room id for room steps.
type TeardownStep struct {
	Entity string
	Query  string
}

// memberTeardownSteps remove everything that references a membership,
// leaves-first. Rows that merely point at the member (cleaning task
// attribution) are neutralized instead of deleted.
var memberTeardownSteps = []TeardownStep{
	{"chore_assignments", `DELETE FROM chore_assignments WHERE membership_id = ?`},
	{"chore_verifications (authored)", `DELETE FROM chore_verifications WHERE verified_by = ?`},
	{"chore_verifications (on own completions)", `DELETE FROM chore_verifications WHERE completion_id IN (SELECT id FROM chore_completions WHERE membership_id = ?)`},
	{"expense_splits (owed)", `DELETE FROM expense_splits WHERE membership_id = ?`},
	{"chore_completions", `DELETE FROM chore_completions WHERE membership_id = ?`},
	{"chore_swap_requests", `DELETE FROM chore_swap_requests WHERE from_membership = ? OR to_membership = ?`},
	{"chore_assignment_history", `DELETE FROM chore_assignment_history WHERE membership_id = ?`},
	{"expense_splits (on paid expenses)", `DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE payer_membership_id = ?)`},
	{"expenses (paid)", `DELETE FROM expenses WHERE payer_membership_id = ?`},
	{"announcements", `DELETE FROM announcements WHERE membership_id = ?`},
	{"cleaning_tasks (attribution)", `UPDATE cleaning_tasks SET last_done_by = NULL WHERE last_done_by = ?`},
	{"room_invitations (issued)", `DELETE FROM room_invitations WHERE invited_by = ?`},
	{"room_memberships", `DELETE FROM room_memberships WHERE id = ?`},
}

// roomTeardownSteps remove a room and everything inside it. Swap requests,
// completions, and splits match by chore/expense or by either membership
// side, covering rows that crossed rooms through stale references.
var roomTeardownSteps = []TeardownStep{
	{"room_invitations", `DELETE FROM room_invitations WHERE room_id = ?`},
	{"chore_verifications", `DELETE FROM chore_verifications WHERE completion_id IN (SELECT id FROM chore_completions WHERE chore_id IN (SELECT id FROM chores WHERE room_id = ?))`},
	{"chore_assignment_history", `DELETE FROM chore_assignment_history WHERE chore_id IN (SELECT id FROM chores WHERE room_id = ?)`},
	{"chore_assignments", `DELETE FROM chore_assignments WHERE chore_id IN (SELECT id FROM chores WHERE room_id = ?)`},
	{"chore_swap_requests", `DELETE FROM chore_swap_requests WHERE chore_id IN (SELECT id FROM chores WHERE room_id = ?) OR from_membership IN (SELECT id FROM room_memberships WHERE room_id = ?) OR to_membership IN (SELECT id FROM room_memberships WHERE room_id = ?)`},
	{"chore_completions", `DELETE FROM chore_completions WHERE chore_id IN (SELECT id FROM chores WHERE room_id = ?) OR membership_id IN (SELECT id FROM room_memberships WHERE room_id = ?)`},
	{"chores", `DELETE FROM chores WHERE room_id = ?`},
	{"expense_splits", `DELETE FROM expense_splits WHERE expense_id IN (SELECT id FROM expenses WHERE room_id = ?) OR membership_id IN (SELECT id FROM room_memberships WHERE room_id = ?)`},
	{"expenses", `DELETE FROM expenses WHERE room_id = ?`},
	{"announcements", `DELETE FROM announcements WHERE room_id = ?`},
	{"cleaning_tasks", `DELETE FROM cleaning_tasks WHERE room_id = ?`},
	{"room_memberships", `DELETE FROM room_memberships WHERE room_id = ?`},
	{"rooms", `DELETE FROM rooms WHERE id = ?`},
}

// LeaveResult reports what a voluntary leave did.
type LeaveResult struct {
	Left        bool  `json:"left"`
	RoomDeleted bool  `json:"room_deleted"`
	RoomID      int64 `json:"room_id"`
}

func runSteps(tx *sql.Tx, steps []TeardownStep, id int64) error {
	for _, step := range steps {
		argc := strings.Count(step.Query, "?")
		args := make([]any, argc)
		for i := range args {
			args[i] = id
		}
		if _, err := tx.Exec(step.Query, args...); err != nil {
			return fmt.Errorf("teardown %s: %w", step.Entity, err)
		}
	}
	return nil
}

// MemberLeaves removes the membership and all records referencing it. When
// it was the room's last active membership, the room itself is torn down in
// the same transaction.
func (s *TeardownStore) MemberLeaves(membershipID, roomID int64) (*LeaveResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var memberRoomID int64
	err = tx.QueryRow(`SELECT room_id FROM room_memberships WHERE id = ?`, membershipID).Scan(&memberRoomID)
	if err == sql.ErrNoRows {
		return nil, apperr.Reference("membership %d not found", membershipID)
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if memberRoomID != roomID {
		return nil, apperr.Conflict("membership %d does not belong to room %d", membershipID, roomID)
	}

	if err := runSteps(tx, memberTeardownSteps, membershipID); err != nil {
		return nil, err
	}

	var remaining int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM room_memberships WHERE room_id = ? AND is_active = 1`,
		roomID,
	).Scan(&remaining)
	if err != nil {
		return nil, fmt.Errorf("count remaining members: %w", err)
	}

	result := &LeaveResult{Left: true, RoomID: roomID}
	if remaining == 0 {
		if err := runSteps(tx, roomTeardownSteps, roomID); err != nil {
			return nil, err
		}
		result.RoomDeleted = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// DestroyRoom deletes the room and everything in it. A non-admin caller
// cannot destroy a shared room; the call degrades to that member leaving.
func (s *TeardownStore) DestroyRoom(roomID, actingMembershipID int64, isAdmin bool) (*LeaveResult, error) {
	if !isAdmin {
		return s.MemberLeaves(actingMembershipID, roomID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM rooms WHERE id = ?`, roomID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check room: %w", err)
	}
	if exists == 0 {
		return nil, apperr.Reference("room %d not found", roomID)
	}

	if err := runSteps(tx, roomTeardownSteps, roomID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &LeaveResult{Left: true, RoomDeleted: true, RoomID: roomID}, nil
}
