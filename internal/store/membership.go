package store

import (
	"database/sql"
	"fmt"

	"roomsync/internal/apperr"
	"roomsync/internal/model"
)

// MembershipStore is the authoritative mapping of (user, room) to a
// membership record. Every other store references memberships by id and
// relies on this one for role and activity checks.
type MembershipStore struct {
	db *sql.DB
}

func NewMembershipStore(db *sql.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

func scanMembership(scanner interface{ Scan(...any) error }) (*model.Membership, error) {
	var m model.Membership
	err := scanner.Scan(
		&m.ID, &m.UserID, &m.RoomID, &m.Role, &m.Points, &m.StreakCount,
		&m.TotalCompleted, &m.TrustScore, &m.IsActive, &m.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const membershipCols = `id, user_id, room_id, role, points, streak_count, total_completed, trust_score, is_active, joined_at`

// Create inserts a membership, or reactivates a deactivated one for the same
// (user, room) pair.
func (s *MembershipStore) Create(userID, roomID int64, role string) (*model.Membership, error) {
	if role != model.RoleAdmin && role != model.RoleMember {
		return nil, apperr.Validation("unknown role %q", role)
	}

	_, err := s.db.Exec(
		`INSERT INTO room_memberships (user_id, room_id, role)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, room_id) DO UPDATE SET is_active = 1, role = excluded.role`,
		userID, roomID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	return s.MembershipOf(userID, roomID)
}

func (s *MembershipStore) Get(membershipID int64) (*model.Membership, error) {
	row := s.db.QueryRow(`SELECT `+membershipCols+` FROM room_memberships WHERE id = ?`, membershipID)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// MembershipOf returns the active membership for a user in a room, or nil.
func (s *MembershipStore) MembershipOf(userID, roomID int64) (*model.Membership, error) {
	row := s.db.QueryRow(
		`SELECT `+membershipCols+` FROM room_memberships WHERE user_id = ? AND room_id = ? AND is_active = 1`,
		userID, roomID,
	)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership of user: %w", err)
	}
	return m, nil
}

// RoleOf returns the user's role in the room, or "" when not a member.
func (s *MembershipStore) RoleOf(userID, roomID int64) (string, error) {
	m, err := s.MembershipOf(userID, roomID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", nil
	}
	return m.Role, nil
}

func (s *MembershipStore) IsAdmin(userID, roomID int64) (bool, error) {
	role, err := s.RoleOf(userID, roomID)
	if err != nil {
		return false, err
	}
	return role == model.RoleAdmin, nil
}

// RequireMember returns the caller's active membership or an authorization
// error. Handlers call this before any room-scoped mutation.
func (s *MembershipStore) RequireMember(userID, roomID int64) (*model.Membership, error) {
	m, err := s.MembershipOf(userID, roomID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.Authorization("room membership required")
	}
	return m, nil
}

// RequireAdmin returns the caller's membership when it carries the admin
// role, or an authorization error.
func (s *MembershipStore) RequireAdmin(userID, roomID int64) (*model.Membership, error) {
	m, err := s.RequireMember(userID, roomID)
	if err != nil {
		return nil, err
	}
	if m.Role != model.RoleAdmin {
		return nil, apperr.Authorization("admin privileges required")
	}
	return m, nil
}

func (s *MembershipStore) ListByRoom(roomID int64) ([]model.MembershipWithUser, error) {
	rows, err := s.db.Query(
		`SELECT m.id, m.user_id, m.room_id, m.role, m.points, m.streak_count,
		        m.total_completed, m.trust_score, m.is_active, m.joined_at,
		        u.name, u.email
		 FROM room_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.room_id = ? AND m.is_active = 1
		 ORDER BY m.joined_at ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var members []model.MembershipWithUser
	for rows.Next() {
		var m model.MembershipWithUser
		err := rows.Scan(
			&m.ID, &m.UserID, &m.RoomID, &m.Role, &m.Points, &m.StreakCount,
			&m.TotalCompleted, &m.TrustScore, &m.IsActive, &m.JoinedAt,
			&m.UserName, &m.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountActive returns the number of active memberships in a room.
func (s *MembershipStore) CountActive(roomID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM room_memberships WHERE room_id = ? AND is_active = 1`,
		roomID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active memberships: %w", err)
	}
	return n, nil
}

// PromoteToAdmin changes a member's role. Only admins may call this; the
// handler enforces that via RequireAdmin.
func (s *MembershipStore) PromoteToAdmin(membershipID int64) error {
	result, err := s.db.Exec(
		`UPDATE room_memberships SET role = ? WHERE id = ? AND is_active = 1`,
		model.RoleAdmin, membershipID,
	)
	if err != nil {
		return fmt.Errorf("promote membership: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperr.Reference("membership %d not found", membershipID)
	}
	return nil
}
