package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

// PointsPerCompletion is the flat award credited when a completion is
// approved. Streak and trust based formulas are tracked on the membership
// but not yet fed back into the award.
const PointsPerCompletion = 10

// CompletionStore runs the completion/verification workflow. A completion
// starts pending when the chore demands approval and moves to exactly one
// terminal state; the chore's last_completed baseline only ever advances
// inside the same transaction as the transition that justifies it.
type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	var photoURL sql.NullString

	err := scanner.Scan(&c.ID, &c.ChoreID, &c.MembershipID, &c.CompletedAt, &photoURL, &c.Status, &c.PointsEarned)
	if err != nil {
		return nil, err
	}
	if photoURL.Valid {
		c.PhotoURL = &photoURL.String
	}
	return &c, nil
}

const completionCols = `id, chore_id, membership_id, completed_at, photo_url, status, points_earned`

// Submit records a member's claim of having done the chore. Status is
// computed, never chosen by the caller: immediately approved (with points
// credited and last_completed stamped) unless the chore requires approval.
func (s *CompletionStore) Submit(choreID, membershipID int64, photoURL *string) (*model.Completion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var approvalRequired, photoRequired bool
	err = tx.QueryRow(
		`SELECT approval_required, photo_required FROM chores WHERE id = ? AND is_active = 1`,
		choreID,
	).Scan(&approvalRequired, &photoRequired)
	if err == sql.ErrNoRows {
		return nil, apperr.Reference("chore %d not found", choreID)
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM room_memberships WHERE id = ? AND is_active = 1`, membershipID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if exists == 0 {
		return nil, apperr.Reference("membership %d not found", membershipID)
	}

	if photoRequired && (photoURL == nil || *photoURL == "") {
		return nil, apperr.Validation("this chore requires photo evidence")
	}

	status := model.CompletionApproved
	points := PointsPerCompletion
	if approvalRequired {
		status = model.CompletionPending
		points = 0
	}

	result, err := tx.Exec(
		`INSERT INTO chore_completions (chore_id, membership_id, photo_url, status, points_earned)
		 VALUES (?, ?, ?, ?, ?)`,
		choreID, membershipID, nullString(photoURL), status, points,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	completionID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if status == model.CompletionApproved {
		if err := creditCompletionTx(tx, completionID, choreID, membershipID, points); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completionCols+` FROM chore_completions WHERE id = ?`, completionID)
	return scanCompletion(row)
}

// creditCompletionTx stamps the chore's due-date baseline with the
// completion's own timestamp (not the approval time) and credits the member.
func creditCompletionTx(tx *sql.Tx, completionID, choreID, membershipID int64, points int) error {
	_, err := tx.Exec(
		`UPDATE chores
		 SET last_completed = (SELECT completed_at FROM chore_completions WHERE id = ?)
		 WHERE id = ?`,
		completionID, choreID,
	)
	if err != nil {
		return fmt.Errorf("stamp last_completed: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE room_memberships SET points = points + ?, total_completed = total_completed + 1 WHERE id = ?`,
		points, membershipID,
	)
	if err != nil {
		return fmt.Errorf("credit membership: %w", err)
	}
	return nil
}

// Verify adjudicates a pending completion. Only a room admin may verify; a
// completion is verified at most once, racing verifiers lose with a conflict.
func (s *CompletionStore) Verify(completionID, verifierMembershipID int64, outcome, comment string) (*model.Verification, error) {
	if outcome != model.VerificationApproved && outcome != model.VerificationRejected {
		return nil, apperr.Validation("outcome must be %q or %q", model.VerificationApproved, model.VerificationRejected)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var choreID, authorMembershipID, roomID int64
	err = tx.QueryRow(
		`SELECT c.chore_id, c.membership_id, ch.room_id
		 FROM chore_completions c
		 JOIN chores ch ON ch.id = c.chore_id
		 WHERE c.id = ?`,
		completionID,
	).Scan(&choreID, &authorMembershipID, &roomID)
	if err == sql.ErrNoRows {
		return nil, apperr.Reference("completion %d not found", completionID)
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}

	var verifierRole string
	err = tx.QueryRow(
		`SELECT role FROM room_memberships WHERE id = ? AND room_id = ? AND is_active = 1`,
		verifierMembershipID, roomID,
	).Scan(&verifierRole)
	if err == sql.ErrNoRows {
		return nil, apperr.Authorization("verifier is not a member of this room")
	}
	if err != nil {
		return nil, fmt.Errorf("get verifier: %w", err)
	}
	if verifierRole != model.RoleAdmin {
		return nil, apperr.Authorization("admin privileges required to verify completions")
	}

	points := 0
	status := model.CompletionRejected
	if outcome == model.VerificationApproved {
		points = PointsPerCompletion
		status = model.CompletionApproved
	}

	// Guarded transition: only one verifier can win the pending row.
	result, err := tx.Exec(
		`UPDATE chore_completions SET status = ?, points_earned = ? WHERE id = ? AND status = ?`,
		status, points, completionID, model.CompletionPending,
	)
	if err != nil {
		return nil, fmt.Errorf("transition completion: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperr.Conflict("completion already verified")
	}

	insert, err := tx.Exec(
		`INSERT INTO chore_verifications (completion_id, verified_by, verification_type, comment)
		 VALUES (?, ?, ?, ?)`,
		completionID, verifierMembershipID, outcome, comment,
	)
	if err != nil {
		return nil, fmt.Errorf("insert verification: %w", err)
	}
	verificationID, err := insert.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if outcome == model.VerificationApproved {
		if err := creditCompletionTx(tx, completionID, choreID, authorMembershipID, points); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT id, completion_id, verified_by, verification_type, comment, verified_at
		 FROM chore_verifications WHERE id = ?`,
		verificationID,
	)
	var v model.Verification
	if err := row.Scan(&v.ID, &v.CompletionID, &v.VerifiedBy, &v.VerificationType, &v.Comment, &v.VerifiedAt); err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return &v, nil
}

func (s *CompletionStore) GetByID(id int64) (*model.Completion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM chore_completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

func (s *CompletionStore) ListByChore(choreID int64) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM chore_completions WHERE chore_id = ? ORDER BY completed_at DESC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// ListPendingByRoom returns completions awaiting verification across a
// room's chores, oldest first.
func (s *CompletionStore) ListPendingByRoom(roomID int64) ([]model.Completion, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.chore_id, c.membership_id, c.completed_at, c.photo_url, c.status, c.points_earned
		 FROM chore_completions c
		 JOIN chores ch ON ch.id = c.chore_id
		 WHERE ch.room_id = ? AND c.status = ?
		 ORDER BY c.completed_at ASC`,
		roomID, model.CompletionPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending completions: %w", err)
	}
	defer rows.Close()

	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}
