package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

type InvitationStore struct {
	db *sql.DB
}

func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

func scanInvitation(scanner interface{ Scan(...any) error }) (*model.Invitation, error) {
	var inv model.Invitation
	err := scanner.Scan(&inv.ID, &inv.RoomID, &inv.InvitedEmail, &inv.InvitedBy, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

const invitationCols = `id, room_id, invited_email, invited_by, status, created_at`

func (s *InvitationStore) Create(roomID, invitedBy int64, email string) (*model.Invitation, error) {
	if email == "" {
		return nil, apperr.Validation("invited email is required")
	}

	result, err := s.db.Exec(
		`INSERT INTO room_invitations (room_id, invited_email, invited_by) VALUES (?, ?, ?)`,
		roomID, email, invitedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+invitationCols+` FROM room_invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

func (s *InvitationStore) ListByRoom(roomID int64) ([]model.Invitation, error) {
	rows, err := s.db.Query(
		`SELECT `+invitationCols+` FROM room_invitations WHERE room_id = ? ORDER BY created_at DESC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// MarkAccepted resolves pending invitations for the email in the room.
func (s *InvitationStore) MarkAccepted(roomID int64, email string) error {
	_, err := s.db.Exec(
		`UPDATE room_invitations SET status = ? WHERE room_id = ? AND invited_email = ? AND status = ?`,
		model.InviteStatusAccepted, roomID, email, model.InviteStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	return nil
}
