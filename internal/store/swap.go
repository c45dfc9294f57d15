package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

// SwapStore runs the swap negotiation protocol. A member may shop a chore to
// several candidates at once; accepting one proposal transfers the
// assignment and cancels the proposer's competing pending requests for the
// same chore in a single transaction.
type SwapStore struct {
	db *sql.DB
}

func NewSwapStore(db *sql.DB) *SwapStore {
	return &SwapStore{db: db}
}

func scanSwap(scanner interface{ Scan(...any) error }) (*model.SwapRequest, error) {
	var sr model.SwapRequest
	var respondedAt sql.NullTime

	err := scanner.Scan(
		&sr.ID, &sr.ChoreID, &sr.FromMembership, &sr.ToMembership,
		&sr.Status, &sr.Message, &sr.RequestedAt, &respondedAt,
	)
	if err != nil {
		return nil, err
	}
	if respondedAt.Valid {
		sr.RespondedAt = &respondedAt.Time
	}
	return &sr, nil
}

const swapCols = `id, chore_id, from_membership, to_membership, status, message, requested_at, responded_at`

// Propose creates a pending transfer request. Multiple simultaneous
// proposals from the same origin to different targets are allowed.
func (s *SwapStore) Propose(choreID, fromMembership, toMembership int64, message string) (*model.SwapRequest, error) {
	if toMembership == 0 {
		return nil, apperr.Validation("swap target is required")
	}
	if toMembership == fromMembership {
		return nil, apperr.Validation("cannot propose a swap to yourself")
	}

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chores WHERE id = ? AND is_active = 1`, choreID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check chore: %w", err)
	}
	if exists == 0 {
		return nil, apperr.Reference("chore %d not found", choreID)
	}
	for _, membershipID := range []int64{fromMembership, toMembership} {
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM room_memberships WHERE id = ? AND is_active = 1`, membershipID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check membership: %w", err)
		}
		if exists == 0 {
			return nil, apperr.Reference("membership %d not found", membershipID)
		}
	}

	result, err := s.db.Exec(
		`INSERT INTO chore_swap_requests (chore_id, from_membership, to_membership, message)
		 VALUES (?, ?, ?, ?)`,
		choreID, fromMembership, toMembership, message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert swap request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Respond moves a pending request to accepted or declined. Accepting also
// transfers the assignment edge and cancels the origin's sibling pending
// requests for the same chore; declining touches nothing else. Responding
// to a non-pending request is a conflict and a no-op.
func (s *SwapStore) Respond(swapID int64, status string) (*model.SwapRequest, error) {
	if status != model.SwapAccepted && status != model.SwapDeclined {
		return nil, apperr.Validation("status must be %q or %q", model.SwapAccepted, model.SwapDeclined)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Guarded transition: exactly one of two racing responders wins.
	result, err := tx.Exec(
		`UPDATE chore_swap_requests SET status = ?, responded_at = datetime('now') WHERE id = ? AND status = ?`,
		status, swapID, model.SwapPending,
	)
	if err != nil {
		return nil, fmt.Errorf("transition swap: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var current string
		err := tx.QueryRow(`SELECT status FROM chore_swap_requests WHERE id = ?`, swapID).Scan(&current)
		if err == sql.ErrNoRows {
			return nil, apperr.Reference("swap request %d not found", swapID)
		}
		if err != nil {
			return nil, fmt.Errorf("get swap status: %w", err)
		}
		return nil, apperr.Conflict("swap request is not pending (status %q)", current)
	}

	if status == model.SwapAccepted {
		var choreID, fromMembership, toMembership int64
		err = tx.QueryRow(
			`SELECT chore_id, from_membership, to_membership FROM chore_swap_requests WHERE id = ?`,
			swapID,
		).Scan(&choreID, &fromMembership, &toMembership)
		if err != nil {
			return nil, fmt.Errorf("get swap: %w", err)
		}

		// Transfer the edge. The origin's other pending proposals are
		// cancelled by unassignTx; the explicit sibling cancel below also
		// covers proposals made while the origin was not assigned.
		if err := unassignTx(tx, choreID, fromMembership, "swapped_out"); err != nil {
			return nil, err
		}
		if err := assignTx(tx, choreID, toMembership, "swapped_in"); err != nil {
			return nil, err
		}

		_, err = tx.Exec(
			`UPDATE chore_swap_requests
			 SET status = ?, responded_at = datetime('now')
			 WHERE chore_id = ? AND from_membership = ? AND status = ? AND id != ?`,
			model.SwapCancelled, choreID, fromMembership, model.SwapPending, swapID,
		)
		if err != nil {
			return nil, fmt.Errorf("cancel sibling swaps: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(swapID)
}

// Cancel withdraws a pending request. Only the original proposer may cancel.
func (s *SwapStore) Cancel(swapID, requestingMembership int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var fromMembership int64
	var status string
	err = tx.QueryRow(
		`SELECT from_membership, status FROM chore_swap_requests WHERE id = ?`,
		swapID,
	).Scan(&fromMembership, &status)
	if err == sql.ErrNoRows {
		return apperr.Reference("swap request %d not found", swapID)
	}
	if err != nil {
		return fmt.Errorf("get swap: %w", err)
	}

	if fromMembership != requestingMembership {
		return apperr.Authorization("only the requester may cancel a swap request")
	}
	if status != model.SwapPending {
		return apperr.Conflict("swap request is not pending (status %q)", status)
	}

	_, err = tx.Exec(
		`UPDATE chore_swap_requests SET status = ?, responded_at = datetime('now') WHERE id = ?`,
		model.SwapCancelled, swapID,
	)
	if err != nil {
		return fmt.Errorf("cancel swap: %w", err)
	}
	return tx.Commit()
}

func (s *SwapStore) GetByID(id int64) (*model.SwapRequest, error) {
	row := s.db.QueryRow(`SELECT `+swapCols+` FROM chore_swap_requests WHERE id = ?`, id)
	sr, err := scanSwap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get swap request: %w", err)
	}
	return sr, nil
}

const swapDetailCols = `sr.id, sr.chore_id, sr.from_membership, sr.to_membership, sr.status, sr.message, sr.requested_at, sr.responded_at, c.name, u_from.name, u_to.name`

const swapDetailJoins = `
	FROM chore_swap_requests sr
	JOIN chores c ON c.id = sr.chore_id
	JOIN room_memberships m_from ON m_from.id = sr.from_membership
	JOIN users u_from ON u_from.id = m_from.user_id
	JOIN room_memberships m_to ON m_to.id = sr.to_membership
	JOIN users u_to ON u_to.id = m_to.user_id`

func scanSwapDetail(scanner interface{ Scan(...any) error }) (*model.SwapRequestWithDetails, error) {
	var sr model.SwapRequestWithDetails
	var respondedAt sql.NullTime

	err := scanner.Scan(
		&sr.ID, &sr.ChoreID, &sr.FromMembership, &sr.ToMembership,
		&sr.Status, &sr.Message, &sr.RequestedAt, &respondedAt,
		&sr.ChoreName, &sr.FromUserName, &sr.ToUserName,
	)
	if err != nil {
		return nil, err
	}
	if respondedAt.Valid {
		sr.RespondedAt = &respondedAt.Time
	}
	return &sr, nil
}

func (s *SwapStore) listDetails(query string, args ...any) ([]model.SwapRequestWithDetails, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()

	var swaps []model.SwapRequestWithDetails
	for rows.Next() {
		sr, err := scanSwapDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		swaps = append(swaps, *sr)
	}
	return swaps, rows.Err()
}

// ListByRoom returns all swap requests for a room's chores, newest first.
func (s *SwapStore) ListByRoom(roomID int64) ([]model.SwapRequestWithDetails, error) {
	return s.listDetails(
		`SELECT `+swapDetailCols+swapDetailJoins+`
		 WHERE c.room_id = ?
		 ORDER BY sr.requested_at DESC`,
		roomID,
	)
}

// ListForMembership returns requests sent by or addressed to the membership.
func (s *SwapStore) ListForMembership(membershipID int64) ([]model.SwapRequestWithDetails, error) {
	return s.listDetails(
		`SELECT `+swapDetailCols+swapDetailJoins+`
		 WHERE sr.from_membership = ? OR sr.to_membership = ?
		 ORDER BY sr.requested_at DESC`,
		membershipID, membershipID,
	)
}

// ListPendingFor returns the membership's incoming pending requests,
// oldest first.
func (s *SwapStore) ListPendingFor(membershipID int64) ([]model.SwapRequestWithDetails, error) {
	return s.listDetails(
		`SELECT `+swapDetailCols+swapDetailJoins+`
		 WHERE sr.to_membership = ? AND sr.status = ?
		 ORDER BY sr.requested_at ASC`,
		membershipID, model.SwapPending,
	)
}
