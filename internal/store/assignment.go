package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

// AssignmentStore tracks which memberships are responsible for which chores.
// At most one row exists per (chore, membership) pair; assignment toggles
// is_active rather than inserting duplicates. Every mutation also cancels
// pending swap proposals made by a member who loses the assignment, so a
// transfer can never be honored after the edge it would move is gone.
type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	err := scanner.Scan(&a.ID, &a.ChoreID, &a.MembershipID, &a.IsActive, &a.AssignedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const assignmentCols = `id, chore_id, membership_id, is_active, assigned_at`

// assignTx activates (or reactivates) an assignment edge inside tx.
func assignTx(tx *sql.Tx, choreID, membershipID int64, action string) error {
	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM chores WHERE id = ?`, choreID).Scan(&exists); err != nil {
		return fmt.Errorf("check chore: %w", err)
	}
	if exists == 0 {
		return apperr.Reference("chore %d not found", choreID)
	}
	if err := tx.QueryRow(`SELECT COUNT(*) FROM room_memberships WHERE id = ? AND is_active = 1`, membershipID).Scan(&exists); err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if exists == 0 {
		return apperr.Reference("membership %d not found", membershipID)
	}

	_, err := tx.Exec(
		`INSERT INTO chore_assignments (chore_id, membership_id, is_active, assigned_at)
		 VALUES (?, ?, 1, datetime('now'))
		 ON CONFLICT (chore_id, membership_id) DO UPDATE SET is_active = 1, assigned_at = datetime('now')`,
		choreID, membershipID,
	)
	if err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO chore_assignment_history (chore_id, membership_id, action) VALUES (?, ?, ?)`,
		choreID, membershipID, action,
	)
	if err != nil {
		return fmt.Errorf("insert assignment history: %w", err)
	}
	return nil
}

// unassignTx deactivates one edge inside tx and cancels the member's pending
// swap proposals for the chore.
func unassignTx(tx *sql.Tx, choreID, membershipID int64, action string) error {
	result, err := tx.Exec(
		`UPDATE chore_assignments SET is_active = 0 WHERE chore_id = ? AND membership_id = ? AND is_active = 1`,
		choreID, membershipID,
	)
	if err != nil {
		return fmt.Errorf("deactivate assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil // already inactive or never assigned
	}

	_, err = tx.Exec(
		`INSERT INTO chore_assignment_history (chore_id, membership_id, action) VALUES (?, ?, ?)`,
		choreID, membershipID, action,
	)
	if err != nil {
		return fmt.Errorf("insert assignment history: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE chore_swap_requests
		 SET status = ?, responded_at = datetime('now')
		 WHERE chore_id = ? AND from_membership = ? AND status = ?`,
		model.SwapCancelled, choreID, membershipID, model.SwapPending,
	)
	if err != nil {
		return fmt.Errorf("cancel pending swaps: %w", err)
	}
	return nil
}

// Assign idempotently activates the edge between a chore and a membership.
func (s *AssignmentStore) Assign(choreID, membershipID int64) (*model.Assignment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := assignTx(tx, choreID, membershipID, "assigned"); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+assignmentCols+` FROM chore_assignments WHERE chore_id = ? AND membership_id = ?`,
		choreID, membershipID,
	)
	return scanAssignment(row)
}

// Unassign deactivates a single member's edge on the chore.
func (s *AssignmentStore) Unassign(choreID, membershipID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := unassignTx(tx, choreID, membershipID, "unassigned"); err != nil {
		return err
	}
	return tx.Commit()
}

// UnassignAll clears every active edge for the chore.
func (s *AssignmentStore) UnassignAll(choreID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids, err := activeAssigneeIDs(tx, choreID)
	if err != nil {
		return err
	}
	for _, membershipID := range ids {
		if err := unassignTx(tx, choreID, membershipID, "unassigned"); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Replace clears all active edges then assigns the given set. An empty set
// leaves the chore fully unassigned.
func (s *AssignmentStore) Replace(choreID int64, membershipIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := activeAssigneeIDs(tx, choreID)
	if err != nil {
		return err
	}
	for _, membershipID := range existing {
		if err := unassignTx(tx, choreID, membershipID, "unassigned"); err != nil {
			return err
		}
	}
	for _, membershipID := range membershipIDs {
		if err := assignTx(tx, choreID, membershipID, "assigned"); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func activeAssigneeIDs(tx *sql.Tx, choreID int64) ([]int64, error) {
	rows, err := tx.Query(
		`SELECT membership_id FROM chore_assignments WHERE chore_id = ? AND is_active = 1`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListActive returns the chore's current assignees with member names for
// chore listings.
func (s *AssignmentStore) ListActive(choreID int64) ([]model.Assignee, error) {
	rows, err := s.db.Query(
		`SELECT a.membership_id, u.name, a.assigned_at
		 FROM chore_assignments a
		 JOIN room_memberships m ON m.id = a.membership_id
		 JOIN users u ON u.id = m.user_id
		 WHERE a.chore_id = ? AND a.is_active = 1
		 ORDER BY a.assigned_at ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var assignees []model.Assignee
	for rows.Next() {
		var a model.Assignee
		if err := rows.Scan(&a.MembershipID, &a.UserName, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}

// IsAssigned reports whether the membership currently holds an active edge
// on the chore.
func (s *AssignmentStore) IsAssigned(choreID, membershipID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chore_assignments WHERE chore_id = ? AND membership_id = ? AND is_active = 1`,
		choreID, membershipID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return n > 0, nil
}
